package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daynote/internal/cli"
	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
)

// versioned is implemented by the SQL backends.
type versioned interface {
	SchemaVersion(ctx context.Context) (current, latest int, err error)
}

type check struct {
	name string
	// needsStore checks are skipped when the store could not be loaded.
	needsStore bool
	// warnOnly failures do not fail the run.
	warnOnly bool
	run      func(ctx *cli.Context) error
}

var errSkipped = errors.New("not applicable")

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Store reachable", run: checkStoreReachable},
		{name: "Schema version", needsStore: true, run: checkSchemaVersion},
		{name: "Records decode", needsStore: true, run: checkRecordsDecode},
		{name: "Unique dates", needsStore: true, run: checkUniqueDates},
		{name: "Locale setting", needsStore: true, warnOnly: true, run: checkLocale},
		{name: "Clock", run: func(*cli.Context) error { return checkClock(time.Now()) }},
		{name: "Timezone", warnOnly: true, run: func(*cli.Context) error { return checkTimezone(time.Now().Location()) }},
	}

	hasError := false
	reachable := true
	for _, c := range checks {
		if c.needsStore && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Store reachable" {
				reachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	v, ok := ctx.Store.(versioned)
	if !ok {
		return fmt.Errorf("%w: document store", errSkipped)
	}
	current, latest, err := v.SchemaVersion(ctx.Ctx)
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema version %d, expected %d; run 'daynote init'", current, latest)
	}
	return nil
}

func checkRecordsDecode(ctx *cli.Context) error {
	_, err := ctx.Store.GetAll(ctx.Ctx)
	return err
}

func checkUniqueDates(ctx *cli.Context) error {
	days, err := ctx.Store.GetAll(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("%w: records do not decode", errSkipped)
	}
	return findDuplicateDates(days)
}

func findDuplicateDates(days []models.Day) error {
	seen := make(map[models.Date]models.DayID, len(days))
	for _, day := range days {
		if id, ok := seen[day.Date]; ok {
			return fmt.Errorf("%w: %s stored as ids %s and %s", storage.ErrUniqueConstraint, day.Date, id, day.ID)
		}
		seen[day.Date] = day.ID
	}
	return nil
}

func checkLocale(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(ctx.Ctx)
	if err != nil {
		return err
	}
	if _, ok := models.LookupLocale(settings.Locale); !ok {
		return fmt.Errorf("locale %q is not supported, using %q", settings.Locale, models.DefaultLocale.Name())
	}
	return nil
}

func checkClock(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// checkTimezone warns when the local zone is UTC, which is also what Go falls
// back to when no zone is configured: days would roll over at UTC midnight.
func checkTimezone(loc *time.Location) error {
	if loc.String() == "UTC" {
		return fmt.Errorf("local timezone is UTC; set TZ if days should start at local midnight")
	}
	return nil
}
