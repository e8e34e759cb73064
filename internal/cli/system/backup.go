package system

import (
	"fmt"

	"github.com/julianstephens/daynote/internal/backup"
	"github.com/julianstephens/daynote/internal/cli"
	"github.com/julianstephens/daynote/internal/storage/sqlite"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" default:"1" help:"Snapshot the database into the backups directory."`
	List    BackupListCmd    `cmd:"" help:"List available backups, newest first."`
	Restore BackupRestoreCmd `cmd:"" help:"Replace the database with a backup."`
}

func backupManager(ctx *cli.Context) (*backup.Manager, error) {
	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return nil, fmt.Errorf("backups are only supported for the SQLite backend")
	}
	return backup.NewManager(store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create(ctx.Ctx)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Backup created: %s\n", path)
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		ctx.Printf("No backups in %s\n", mgr.Dir())
		return nil
	}
	for _, b := range backups {
		ctx.Printf("%s  %8.1f KB  %s\n", b.Timestamp.Format("2006-01-02 15:04:05"), float64(b.Size)/1024, b.Path)
	}
	return nil
}

type BackupRestoreCmd struct {
	Path string `arg:"" help:"Backup file to restore." type:"existingfile"`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := backupManager(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}

	previous, err := mgr.Restore(ctx.Ctx, c.Path)
	if previous != "" {
		ctx.Printf("Previous database saved to: %s\n", previous)
	}
	if err != nil {
		return err
	}
	ctx.Printf("✓ Restored %s\n", c.Path)
	return nil
}
