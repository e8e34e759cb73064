// Package jsonfile keeps the whole journal in one human-readable JSON document.
//
// Every operation reads the document from disk. Writes hold an exclusive lock
// on "<path>.lock" from read to rename, so writers in any process serialise
// and the unique date check sees every acknowledged insert.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
)

const (
	documentVersion = 1
	lockSuffix      = ".lock"
	lockRetryDelay  = 10 * time.Millisecond
)

// Document is the on-disk layout.
type Document struct {
	Version  int                 `json:"version"`
	NextID   int64               `json:"nextId"`
	Settings storage.Settings    `json:"settings"`
	Days     []storage.DayRecord `json:"days"`
}

type Store struct {
	path   string
	loaded bool
}

var _ storage.Provider = (*Store)(nil)

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

// Init creates the document if it does not exist, then loads it.
func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("%w: create config directory: %v", storage.ErrStorageUnavailable, err)
	}

	err := s.withLock(ctx, func() error {
		_, err := os.Stat(s.path)
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return s.write(&Document{
			Version:  documentVersion,
			NextID:   1,
			Settings: storage.DefaultSettings(),
			Days:     []storage.DayRecord{},
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}

	s.loaded = false
	return s.Load(ctx)
}

// Load checks the document exists and is a version this build understands.
func (s *Store) Load(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	doc, err := s.read(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: storage not initialized, run 'daynote init' first", storage.ErrStorageUnavailable)
		}
		return fmt.Errorf("%w: %v", storage.ErrStorageUnavailable, err)
	}
	if doc.Version > documentVersion {
		return fmt.Errorf("%w: document version %d is newer than supported %d - please upgrade the application",
			storage.ErrStorageUnavailable, doc.Version, documentVersion)
	}
	s.loaded = true
	return nil
}

func (s *Store) Close() error {
	s.loaded = false
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

func (s *Store) GetAll(ctx context.Context) ([]models.Day, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return decodeAll(doc)
}

func (s *Store) FindByDate(ctx context.Context, date models.Date) (models.Day, bool, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return models.Day{}, false, err
	}
	days, err := decodeAll(doc)
	if err != nil {
		return models.Day{}, false, err
	}
	for _, day := range days {
		if day.Date == date {
			return day, true, nil
		}
	}
	return models.Day{}, false, nil
}

func (s *Store) Upsert(ctx context.Context, day *models.Day) error {
	if !s.loaded {
		return storage.ErrNotLoaded
	}
	if err := storage.CheckWrite(*day); err != nil {
		return err
	}

	var id models.DayID
	err := s.withLock(ctx, func() error {
		doc, err := s.load(ctx)
		if err != nil {
			return err
		}

		idx := -1
		for i, rec := range doc.Days {
			sameDate := rec.Day == day.Day && rec.Month == day.Month && rec.Year == day.Year
			sameID := rec.ID != nil && day.ID.Valid && *rec.ID == day.ID.Value
			switch {
			case sameID:
				idx = i
			case sameDate:
				return fmt.Errorf("%w: %s", storage.ErrUniqueConstraint, day.Date)
			}
		}

		rec := storage.NewDayRecord(*day)
		switch {
		case !day.ID.Valid:
			next := doc.NextID
			rec.ID = &next
			doc.NextID++
			doc.Days = append(doc.Days, rec)
			id = models.NewDayID(next)
		case idx < 0:
			return fmt.Errorf("%w: day %s: %w", storage.ErrStorageWrite, day.ID, storage.ErrNotFound)
		default:
			doc.Days[idx] = rec
			id = day.ID
		}
		return s.write(doc)
	})
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrUniqueConstraint), errors.Is(err, storage.ErrStorageWrite):
		return err
	default:
		return fmt.Errorf("%w: %w", storage.ErrStorageWrite, err)
	}

	day.ID = id
	return nil
}

func (s *Store) GetSettings(ctx context.Context) (storage.Settings, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return storage.Settings{}, err
	}
	return doc.Settings, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings storage.Settings) error {
	if !s.loaded {
		return storage.ErrNotLoaded
	}
	err := s.withLock(ctx, func() error {
		doc, err := s.load(ctx)
		if err != nil {
			return err
		}
		doc.Settings = settings
		return s.write(doc)
	})
	if err != nil && !errors.Is(err, storage.ErrStorageWrite) {
		return fmt.Errorf("%w: %w", storage.ErrStorageWrite, err)
	}
	return err
}

// withLock runs fn holding the exclusive lock on the sidecar lock file.
// Each call takes its own flock handle so goroutines sharing a Store also
// serialise.
func (s *Store) withLock(ctx context.Context, fn func() error) error {
	lock := flock.New(s.path + lockSuffix)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", lock.Path())
	}
	defer lock.Unlock()
	return fn()
}

func (s *Store) load(ctx context.Context) (*Document, error) {
	if !s.loaded {
		return nil, storage.ErrNotLoaded
	}
	doc, err := s.read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrStorageRead, err)
	}
	return doc, nil
}

func (s *Store) read(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", storage.ErrCorruptRecord, s.path, err)
	}
	if doc.NextID < 1 {
		doc.NextID = 1
	}
	for _, rec := range doc.Days {
		if rec.ID != nil && *rec.ID >= doc.NextID {
			doc.NextID = *rec.ID + 1
		}
	}
	return doc, nil
}

// write replaces the document via a temp file and rename.
func (s *Store) write(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func decodeAll(doc *Document) ([]models.Day, error) {
	days := make([]models.Day, 0, len(doc.Days))
	seen := make(map[models.Date]bool, len(doc.Days))
	for _, rec := range doc.Days {
		if rec.ID == nil {
			return nil, fmt.Errorf("%w: %w: record %d-%d-%d has no id", storage.ErrStorageRead, storage.ErrCorruptRecord, rec.Year, rec.Month, rec.Day)
		}
		day, err := rec.ToDay()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrStorageRead, err)
		}
		if seen[day.Date] {
			return nil, fmt.Errorf("%w: %w: duplicate date %s", storage.ErrStorageRead, storage.ErrCorruptRecord, day.Date)
		}
		seen[day.Date] = true
		days = append(days, day)
	}
	return days, nil
}
