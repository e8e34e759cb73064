// Package postgres is the server backend, for sharing one journal between machines.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/daynote/internal/constants"
	"github.com/julianstephens/daynote/internal/logger"
	"github.com/julianstephens/daynote/internal/migration"
	"github.com/julianstephens/daynote/internal/storage"
	"github.com/julianstephens/daynote/migrations"
)

const uniqueViolation = "23505"

type Store struct {
	connStr string
	schema  string
	db      *sql.DB
}

var _ storage.Provider = (*Store)(nil)

type Option func(*Store)

// WithSchema stores the tables in schema instead of "daynote".
func WithSchema(schema string) Option {
	return func(s *Store) {
		s.schema = schema
	}
}

func New(connStr string, opts ...Option) *Store {
	s := &Store{
		connStr: connStr,
		schema:  constants.AppName,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.connStr = withSearchPath(s.connStr, s.schema)
	return s
}

func (s *Store) Init(ctx context.Context) error {
	if s.db == nil {
		if err := s.open(ctx); err != nil {
			return err
		}
	}

	runner, err := s.runner()
	if err != nil {
		return err
	}
	if _, err := runner.ApplyMigrations(ctx, func(msg string) {
		logger.Debug(msg, "schema", s.schema)
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

func (s *Store) Load(ctx context.Context) error {
	if s.db != nil {
		return nil
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
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("%w: open database: %v", storage.ErrStorageUnavailable, err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("%w: %v (hint: try adding ?sslmode=disable to your connection string)", storage.ErrStorageUnavailable, err)
		}
		return fmt.Errorf("%w: connect: %v", storage.ErrStorageUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(s.schema)); err != nil {
		db.Close()
		return fmt.Errorf("%w: create schema: %v", storage.ErrStorageUnavailable, err)
	}

	s.db = db
	return nil
}

func (s *Store) runner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("%w: access postgres migrations: %v", storage.ErrStorageUnavailable, err)
	}
	return migration.NewRunner(s.db, subFS, migration.Postgres), nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// GetConfigPath returns the connection string with any user info redacted.
func (s *Store) GetConfigPath() string {
	return Redact(s.connStr)
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

// DropSchema removes every table daynote created. Used by tests.
func (s *Store) DropSchema(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrNotLoaded
	}
	_, err := s.db.ExecContext(ctx, "DROP SCHEMA IF EXISTS "+pq.QuoteIdentifier(s.schema)+" CASCADE")
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
