package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/daynote/internal/cli"
	"github.com/julianstephens/daynote/internal/cli/days"
	"github.com/julianstephens/daynote/internal/cli/settings"
	"github.com/julianstephens/daynote/internal/cli/system"
	"github.com/julianstephens/daynote/internal/constants"
	apperrors "github.com/julianstephens/daynote/internal/errors"
	"github.com/julianstephens/daynote/internal/logger"
	"github.com/julianstephens/daynote/internal/storage/postgres"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite file, .json file, or PostgreSQL connection string. PostgreSQL passwords must NOT be embedded; use the OS keyring, DAYNOTE_DB_CONNECTION, or .pgpass. Defaults to the keyring entry if set, else ~/.config/daynote/daynote.db." env:"DAYNOTE_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr." env:"DAYNOTE_DEBUG"`

	Init     system.InitCmd       `cmd:"" help:"Initialize daynote storage."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Today    days.TodayCmd        `cmd:"" help:"Create today's entry if needed and print all days."`
	Add      days.AddCmd          `cmd:"" help:"Add a task to today."`
	List     days.ListCmd         `cmd:"" help:"Print all days and their tasks."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup   system.BackupCmd     `cmd:"" help:"Create, list, or restore SQLite backups."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("A daily task journal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, Dir: configDir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	apperrors.Fatal(run(kctx))
}

func run(kctx *kong.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	command := kctx.Command()
	logger.Debug("Running command", "command", command)

	// Keyring commands manage credentials and never touch the store.
	if strings.HasPrefix(command, "keyring") {
		return kctx.Run(&cli.Context{Ctx: ctx, Out: os.Stdout})
	}

	store, err := cli.OpenStore(CLI.Config)
	if err != nil {
		return err
	}
	defer store.Close()

	// doctor reports on the store as found; everything else creates it on first use.
	if command != "doctor" {
		if err := store.Init(ctx); err != nil {
			return err
		}
	}

	return kctx.Run(cli.NewContext(ctx, store))
}

// configDir is where logs go: next to the store file, or the default config
// directory for PostgreSQL.
func configDir(config string) string {
	path := constants.DefaultConfigPath
	if config != "" && !postgres.IsConnString(config) {
		path = config
	}
	expanded, err := cli.ExpandPath(path)
	if err != nil {
		return os.TempDir()
	}
	return filepath.Dir(expanded)
}
