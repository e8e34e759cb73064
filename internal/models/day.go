package models

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrEmptyTask is returned when a task's text is empty after trimming.
	ErrEmptyTask = errors.New("task text must not be empty")
	// ErrInvalidDate is returned for a (day, month, year) triple that is not on the calendar.
	ErrInvalidDate = errors.New("invalid date")
)

// Date is a calendar day without time or zone.
type Date struct {
	Day   int
	Month int
	Year  int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Day: d, Month: int(m), Year: y}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Validate reports whether the triple names a real proleptic Gregorian day.
func (d Date) Validate() error {
	if d.Year < 1 || d.Year > 9999 || d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
		return fmt.Errorf("%w: %d/%d/%d", ErrInvalidDate, d.Day, d.Month, d.Year)
	}
	// time.Date normalises overflow (31/2 -> 2/3), so a round trip detects it.
	if DateOf(d.Time()) != d {
		return fmt.Errorf("%w: %d/%d/%d", ErrInvalidDate, d.Day, d.Month, d.Year)
	}
	return nil
}

// Time returns midnight UTC on d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// DayID is the store-assigned identity of a Day. Valid is false until the
// Day has been inserted; the zero Value is a legal id.
type DayID struct {
	Value int64
	Valid bool
}

// NewDayID returns a present id.
func NewDayID(v int64) DayID {
	return DayID{Value: v, Valid: true}
}

func (id DayID) String() string {
	if !id.Valid {
		return "<unsaved>"
	}
	return strconv.FormatInt(id.Value, 10)
}

// Task is an immutable note stamped with the local date and time it was written.
type Task struct {
	Text        string `json:"text"`
	CreatedDate string `json:"createdDate"`
	CreatedTime string `json:"createdTime"`
}

// NewTask trims text and stamps it with now rendered in loc.
func NewTask(text string, now time.Time, loc Locale) (Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Task{}, ErrEmptyTask
	}
	return Task{
		Text:        text,
		CreatedDate: loc.FormatDate(now),
		CreatedTime: loc.FormatTime(now),
	}, nil
}

// Day groups the tasks written on one calendar date.
type Day struct {
	ID DayID
	Date
	Tasks []Task
}

// NewDay returns an unsaved Day with no tasks.
func NewDay(date Date) Day {
	return Day{Date: date, Tasks: []Task{}}
}

// Persisted reports whether the Day carries a store-assigned id.
func (d Day) Persisted() bool {
	return d.ID.Valid
}

// AppendTask adds a task at the end of the sequence. Empty or
// whitespace-only text returns ErrEmptyTask and leaves the Day unchanged.
// Nothing is persisted.
func (d *Day) AppendTask(text string, now time.Time, loc Locale) error {
	task, err := NewTask(text, now, loc)
	if err != nil {
		return err
	}
	d.Tasks = append(d.Tasks, task)
	return nil
}

// Weekday returns the day of the week of the Day's date.
func (d Day) Weekday() time.Weekday {
	return d.Date.Time().Weekday()
}

// WeekdayName returns the weekday name in loc.
func (d Day) WeekdayName(loc Locale) string {
	return loc.WeekdayName(d.Weekday())
}

// SortDays orders days chronologically, oldest first.
func SortDays(days []Day) {
	sort.SliceStable(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
}
