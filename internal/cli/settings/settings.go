package settings

import (
	"fmt"

	"github.com/julianstephens/daynote/internal/cli"
	"github.com/julianstephens/daynote/internal/models"
)

type SettingsCmd struct {
	Show ShowCmd `cmd:"" default:"1" help:"Show current settings."`
	Set  SetCmd  `cmd:"" help:"Change settings."`
}

type ShowCmd struct{}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	loc, ok := models.LookupLocale(settings.Locale)
	ctx.Println("Current Settings:")
	ctx.Printf("  Locale:       %s\n", settings.Locale)
	if !ok {
		ctx.Printf("                (unsupported, using %s)\n", loc.Name())
	}
	ctx.Printf("  Storage:      %s\n", ctx.Store.GetConfigPath())
	return nil
}

type SetCmd struct {
	Locale *string `help:"Language for weekday names and timestamps (es, en)."`
}

func (c *SetCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.Locale != nil {
		loc, ok := models.LookupLocale(*c.Locale)
		if !ok {
			return fmt.Errorf("unsupported locale %q", *c.Locale)
		}
		settings.Locale = loc.Name()
		updated = true
	}

	if !updated {
		ctx.Println("No changes specified. Use flags to update settings.")
		return nil
	}
	if err := ctx.Store.SaveSettings(ctx.Ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")
	return nil
}
