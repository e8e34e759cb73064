package storage

import (
	"context"

	"github.com/julianstephens/daynote/internal/models"
)

// Provider is a durable store of Day records keyed by an auto-assigned id,
// with a unique secondary index over the (day, month, year) triple.
//
// Implementations are not safe for concurrent use; callers issue one
// operation at a time.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Days
	GetAll(ctx context.Context) ([]models.Day, error)
	// FindByDate reports found=false, with a nil error, when no record exists.
	FindByDate(ctx context.Context, date models.Date) (day models.Day, found bool, err error)
	// Upsert inserts a Day without an id, assigning the new id to day.ID,
	// or overwrites the record at day.ID.
	Upsert(ctx context.Context, day *models.Day) error

	// Settings
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error

	// Utils
	GetConfigPath() string
}
