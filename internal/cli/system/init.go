package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/daynote/internal/cli"
	"github.com/julianstephens/daynote/internal/logger"
	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
)

type InitCmd struct {
	Source string `help:"Path or connection string of another daynote store to copy days and settings from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return err
	}
	ctx.Printf("Initialized daynote storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source == "" {
		return nil
	}

	source, err := cli.OpenStore(c.Source)
	if err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}
	if source.GetConfigPath() == ctx.Store.GetConfigPath() {
		return fmt.Errorf("source and destination are the same: %s", c.Source)
	}
	if err := source.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer source.Close()

	copied, skipped, err := copyDays(ctx, source, ctx.Store)
	if err != nil {
		return err
	}
	ctx.Printf("Copied %d day(s) from %s", copied, source.GetConfigPath())
	if skipped > 0 {
		ctx.Printf(" (%d already present, skipped)", skipped)
	}
	ctx.Println()
	return nil
}

// copyDays inserts every source Day whose date the destination lacks.
// Ids are reassigned by the destination.
func copyDays(ctx *cli.Context, src, dst storage.Provider) (copied, skipped int, err error) {
	days, err := src.GetAll(ctx.Ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read source days: %w", err)
	}

	for _, day := range days {
		day.ID = models.DayID{}
		err := dst.Upsert(ctx.Ctx, &day)
		switch {
		case err == nil:
			copied++
		case errors.Is(err, storage.ErrUniqueConstraint):
			logger.Debug("Skipping existing day", "date", day.Date.String())
			skipped++
		default:
			return copied, skipped, fmt.Errorf("failed to copy %s: %w", day.Date, err)
		}
	}

	if settings, err := src.GetSettings(ctx.Ctx); err == nil {
		if err := dst.SaveSettings(ctx.Ctx, settings); err != nil {
			return copied, skipped, fmt.Errorf("failed to copy settings: %w", err)
		}
	}
	return copied, skipped, nil
}
