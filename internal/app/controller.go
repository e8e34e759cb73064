// Package app holds the session logic shared by the CLI and the TUI: make
// sure today's Day exists, append tasks, and list the journal.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daynote/internal/logger"
	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
)

type Controller struct {
	store  storage.Provider
	now    func() time.Time
	locale models.Locale
}

type Option func(*Controller)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithLocale(loc models.Locale) Option {
	return func(c *Controller) {
		c.locale = loc
	}
}

// New returns a controller over an already opened store.
func New(store storage.Provider, opts ...Option) *Controller {
	c := &Controller{
		store:  store,
		now:    time.Now,
		locale: models.DefaultLocale,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) Locale() models.Locale {
	return c.locale
}

// Today is the current local calendar date.
func (c *Controller) Today() models.Date {
	return models.DateOf(c.now())
}

// EnsureToday creates today's Day if the store has none, then returns every
// Day in chronological order.
func (c *Controller) EnsureToday(ctx context.Context) ([]models.Day, error) {
	return c.EnsureDay(ctx, c.Today())
}

// EnsureDay is EnsureToday for a date the caller already read from the clock.
// A Day created concurrently by another writer counts as present.
func (c *Controller) EnsureDay(ctx context.Context, date models.Date) ([]models.Day, error) {
	_, found, err := c.store.FindByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", date, err)
	}
	if !found {
		day := models.NewDay(date)
		err := c.store.Upsert(ctx, &day)
		switch {
		case err == nil:
			logger.Debug("Created day", "date", date.String(), "id", day.ID.String())
		case errors.Is(err, storage.ErrUniqueConstraint):
			logger.Debug("Day created by another writer", "date", date.String())
		default:
			return nil, fmt.Errorf("create %s: %w", date, err)
		}
	}

	return c.Days(ctx)
}

// AddTask appends a task to day and persists it. When day has no id, the
// stored record for its date is looked up first and its id adopted, so a
// record created elsewhere is updated rather than duplicated.
//
// Empty text returns models.ErrEmptyTask without touching the store. If the
// write fails the task is removed again so day matches what was stored.
func (c *Controller) AddTask(ctx context.Context, day *models.Day, text string) ([]models.Day, error) {
	prev := len(day.Tasks)
	if err := day.AppendTask(text, c.now(), c.locale); err != nil {
		return nil, err
	}

	if !day.ID.Valid {
		existing, found, err := c.store.FindByDate(ctx, day.Date)
		if err != nil {
			day.Tasks = day.Tasks[:prev]
			return nil, fmt.Errorf("resolve id for %s: %w", day.Date, err)
		}
		if found {
			day.ID = existing.ID
			logger.Debug("Resolved day id", "date", day.Date.String(), "id", day.ID.String())
		}
	}

	if err := c.store.Upsert(ctx, day); err != nil {
		day.Tasks = day.Tasks[:prev]
		return nil, fmt.Errorf("save %s: %w", day.Date, err)
	}
	logger.Debug("Added task", "date", day.Date.String(), "id", day.ID.String(), "tasks", len(day.Tasks))

	return c.Days(ctx)
}

// WeekdayName is the weekday of day in the controller's locale.
func (c *Controller) WeekdayName(day models.Day) string {
	return day.WeekdayName(c.locale)
}

// Days returns every stored Day in chronological order.
func (c *Controller) Days(ctx context.Context) ([]models.Day, error) {
	days, err := c.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	models.SortDays(days)
	return days, nil
}

// Find returns the stored Day for date.
func (c *Controller) Find(ctx context.Context, date models.Date) (models.Day, bool, error) {
	return c.store.FindByDate(ctx, date)
}
