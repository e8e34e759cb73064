// Package backup keeps rotating VACUUM INTO snapshots of a SQLite store
// next to the database file.
package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/daynote/internal/constants"
	"github.com/julianstephens/daynote/internal/logger"
)

const (
	// MaxBackups is how many snapshots survive rotation.
	MaxBackups = 14
	DirName    = "backups"
	FilePrefix = constants.AppName + "-"
	FileSuffix = ".db"

	stampLayout = "20060102-150405"
)

var (
	ErrNoDatabase    = errors.New("database does not exist")
	ErrInvalidBackup = errors.New("not a daynote backup")
)

// Info describes one snapshot on disk.
type Info struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

type Option func(*Manager)

// WithKeep overrides MaxBackups.
func WithKeep(n int) Option {
	return func(m *Manager) {
		m.keep = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager manages snapshots of dbPath in a "backups" directory beside it.
func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), DirName),
		keep:   MaxBackups,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create writes a new snapshot and prunes the oldest beyond the limit.
func (m *Manager) Create(ctx context.Context) (string, error) {
	path, err := m.create(ctx)
	if err != nil {
		return "", err
	}
	if err := m.rotate(); err != nil {
		logger.Warn("Failed to rotate old backups", "dir", m.dir, "error", err)
	}
	return path, nil
}

func (m *Manager) create(ctx context.Context) (string, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", ErrNoDatabase, m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return "", err
	}

	db, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return "", fmt.Errorf("failed to back up database: %w", err)
	}
	logger.Debug("Created backup", "path", path)
	return path, nil
}

// nextPath appends -1, -2, ... when a snapshot was already taken this second.
func (m *Manager) nextPath() (string, error) {
	stem := FilePrefix + m.now().Format(stampLayout)
	path := filepath.Join(m.dir, stem+FileSuffix)
	for n := 1; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if n > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s-%d%s", stem, n, FileSuffix))
	}
}

// List returns the snapshots newest first. Files whose names do not parse
// are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.dir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		// Same second: the higher counter is newer.
		a, b := backups[i].Path, backups[j].Path
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a > b
	})
	return backups, nil
}

func parseName(name string) (time.Time, bool) {
	stem, ok := strings.CutPrefix(name, FilePrefix)
	if !ok {
		return time.Time{}, false
	}
	if stem, ok = strings.CutSuffix(stem, FileSuffix); !ok || len(stem) < len(stampLayout) {
		return time.Time{}, false
	}
	if rest := stem[len(stampLayout):]; rest != "" {
		counter, ok := strings.CutPrefix(rest, "-")
		if _, err := strconv.Atoi(counter); !ok || err != nil {
			return time.Time{}, false
		}
	}
	ts, err := time.ParseInLocation(stampLayout, stem[:len(stampLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the snapshot at path. The current
// database, if any, is snapshotted first without rotation. The store must
// be closed.
func (m *Manager) Restore(ctx context.Context, path string) (previous string, err error) {
	if err := verify(ctx, path); err != nil {
		return "", err
	}

	if _, err := os.Stat(m.dbPath); err == nil {
		if previous, err = m.create(ctx); err != nil {
			return "", fmt.Errorf("failed to back up current database before restore: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return previous, fmt.Errorf("failed to copy backup file: %w", err)
	}
	// A leftover WAL would be replayed onto the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(m.dbPath + suffix); err != nil && !os.IsNotExist(err) {
			os.Remove(tmp)
			return previous, fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		os.Remove(tmp)
		return previous, fmt.Errorf("failed to restore database: %w", err)
	}
	return previous, nil
}

// verify checks that path is a SQLite file holding a days table.
func verify(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	defer db.Close()

	var n int
	err = db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", constants.DaysKeyspace).Scan(&n)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: no %s table", ErrInvalidBackup, constants.DaysKeyspace)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := out.ReadFrom(in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
