// Package sqlite is the default embedded backend, a single database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/julianstephens/daynote/internal/logger"
	"github.com/julianstephens/daynote/internal/migration"
	"github.com/julianstephens/daynote/internal/storage"
	"github.com/julianstephens/daynote/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Init opens the database file, creating it and its schema if needed.
func (s *Store) Init(ctx context.Context) error {
	if s.db == nil {
		if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
			return fmt.Errorf("%w: create config directory: %v", storage.ErrStorageUnavailable, err)
		}
		if err := s.open(ctx); err != nil {
			return err
		}
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(ctx, func(msg string) {
		logger.Debug(msg, "path", s.path)
	}); err != nil {
		return fmt.Errorf("%w: run migrations: %v", storage.ErrStorageUnavailable, err)
	}

	if _, err := s.GetSettings(ctx); errors.Is(err, storage.ErrNotFound) {
		if err := s.SaveSettings(ctx, storage.DefaultSettings()); err != nil {
			return fmt.Errorf("%w: save default settings: %v", storage.ErrStorageUnavailable, err)
		}
	} else if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	return nil
}

// Load opens an existing database; it never creates one.
func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("%w: storage not initialized, run 'daynote init' first", storage.ErrStorageUnavailable)
	}
	if err := s.open(ctx); err != nil {
		return err
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if err := runner.ValidateVersion(ctx); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	pending, err := runner.Pending(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	if pending > 0 {
		return fmt.Errorf("%w: %d pending migration(s), run 'daynote init'", storage.ErrStorageUnavailable, pending)
	}
	return nil
}

func (s *Store) open(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("%w: open database: %v", storage.ErrStorageUnavailable, err)
	}
	// One connection serialises writers within the process; the busy
	// timeout covers a second process holding the lock.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("%w: %s: %v", storage.ErrStorageUnavailable, pragma, err)
		}
	}
	s.db = db
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("%w: access sqlite migrations: %v", storage.ErrStorageUnavailable, err)
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite), nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying connection, or nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

// SchemaVersion reports the applied migration version.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, storage.ErrNotLoaded
	}
	runner, err := s.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.GetCurrentVersion(ctx); err != nil {
		return 0, 0, err
	}
	latest, err = runner.GetLatestVersion()
	return current, latest, err
}

func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		serr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}
