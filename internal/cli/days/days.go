// Package days holds the commands that read and write the journal.
package days

import (
	"fmt"
	"strings"

	"github.com/julianstephens/daynote/internal/cli"
	"github.com/julianstephens/daynote/internal/models"
)

// TodayCmd makes sure today's Day exists and prints the journal.
type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	days, err := ctx.App.EnsureToday(ctx.Ctx)
	if err != nil {
		return err
	}
	cli.RenderDays(ctx.Out, ctx.App, days)
	return nil
}

// AddCmd appends a task to today's Day.
type AddCmd struct {
	Text []string `arg:"" help:"Task text. Multiple words are joined with spaces."`
}

func (c *AddCmd) Run(ctx *cli.Context) error {
	date := ctx.App.Today()
	days, err := ctx.App.EnsureDay(ctx.Ctx, date)
	if err != nil {
		return err
	}
	today, ok := find(days, date)
	if !ok {
		return fmt.Errorf("today's record is missing after creation")
	}

	days, err = ctx.App.AddTask(ctx.Ctx, &today, strings.Join(c.Text, " "))
	if err != nil {
		return err
	}

	last := today.Tasks[len(today.Tasks)-1]
	ctx.Printf("✓ Added task at %s: %s\n", last.CreatedTime, last.Text)
	if updated, ok := find(days, today.Date); ok {
		ctx.Printf("  %s now has %d task(s)\n", ctx.App.WeekdayName(updated), len(updated.Tasks))
	}
	return nil
}

// ListCmd prints every Day.
type ListCmd struct {
	From string `help:"Only show days on or after this date (YYYY-MM-DD)."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	days, err := ctx.App.Days(ctx.Ctx)
	if err != nil {
		return err
	}

	if c.From != "" {
		from, err := models.ParseDate(c.From)
		if err != nil {
			return err
		}
		filtered := days[:0]
		for _, day := range days {
			if !day.Date.Before(from) {
				filtered = append(filtered, day)
			}
		}
		days = filtered
	}

	cli.RenderDays(ctx.Out, ctx.App, days)
	return nil
}

func find(days []models.Day, date models.Date) (models.Day, bool) {
	for _, day := range days {
		if day.Date == date {
			return day, true
		}
	}
	return models.Day{}, false
}
