package storage

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/daynote/internal/models"
)

// DayRecord is the persisted shape of a Day:
// {id?, day, month, year, tasks: [{text, createdDate, createdTime}]}.
type DayRecord struct {
	ID    *int64       `json:"id,omitempty"`
	Day   int          `json:"day" validate:"min=1,max=31"`
	Month int          `json:"month" validate:"min=1,max=12"`
	Year  int          `json:"year" validate:"min=1,max=9999"`
	Tasks []TaskRecord `json:"tasks" validate:"dive"`
}

// TaskRecord is the persisted shape of a Task.
type TaskRecord struct {
	Text        string `json:"text" validate:"required"`
	CreatedDate string `json:"createdDate"`
	CreatedTime string `json:"createdTime"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// NewDayRecord converts a Day to its persisted shape.
func NewDayRecord(day models.Day) DayRecord {
	rec := DayRecord{
		Day:   day.Day,
		Month: day.Month,
		Year:  day.Year,
		Tasks: make([]TaskRecord, len(day.Tasks)),
	}
	if day.ID.Valid {
		id := day.ID.Value
		rec.ID = &id
	}
	for i, t := range day.Tasks {
		rec.Tasks[i] = TaskRecord(t)
	}
	return rec
}

// Validate checks field ranges, task text, and that the triple is a real date.
func (r DayRecord) Validate() error {
	if err := recordValidator().Struct(r); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	date := models.Date{Day: r.Day, Month: r.Month, Year: r.Year}
	if err := date.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return nil
}

// CheckWrite rejects a Day that would not decode once stored.
func CheckWrite(day models.Day) error {
	if err := NewDayRecord(day).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}
	return nil
}

// ToDay validates the record and converts it to a Day.
func (r DayRecord) ToDay() (models.Day, error) {
	if err := r.Validate(); err != nil {
		return models.Day{}, err
	}
	day := models.NewDay(models.Date{Day: r.Day, Month: r.Month, Year: r.Year})
	if r.ID != nil {
		day.ID = models.NewDayID(*r.ID)
	}
	for _, t := range r.Tasks {
		day.Tasks = append(day.Tasks, models.Task(t))
	}
	return day, nil
}

// EncodeTasks serialises tasks for a JSON column. A nil slice encodes as [].
func EncodeTasks(tasks []models.Task) ([]byte, error) {
	recs := make([]TaskRecord, len(tasks))
	for i, t := range tasks {
		recs[i] = TaskRecord(t)
	}
	return json.Marshal(recs)
}

// DecodeDay builds a validated Day from the columns of a SQL row.
func DecodeDay(id int64, day, month, year int, tasksJSON []byte) (models.Day, error) {
	rec := DayRecord{ID: &id, Day: day, Month: month, Year: year}
	if len(tasksJSON) > 0 {
		if err := json.Unmarshal(tasksJSON, &rec.Tasks); err != nil {
			return models.Day{}, fmt.Errorf("%w: day %d tasks: %v", ErrCorruptRecord, id, err)
		}
	}
	return rec.ToDay()
}
