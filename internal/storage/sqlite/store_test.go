package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
	"github.com/julianstephens/daynote/internal/storage/storagetest"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) func() storage.Provider {
		path := filepath.Join(t.TempDir(), "daynote.db")
		return func() storage.Provider { return NewStore(path) }
	})
}

func TestLoadUninitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))

	err := store.Load(context.Background())
	require.ErrorIs(t, err, storage.ErrStorageUnavailable)
	assert.Contains(t, err.Error(), "daynote init")
}

func TestInitCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "daynote.db")
	store := NewStore(path)
	require.NoError(t, store.Init(context.Background()))
	defer store.Close()

	assert.Equal(t, path, store.GetConfigPath())
	assert.FileExists(t, path)
}

func TestSchemaVersion(t *testing.T) {
	store := setupTestStore(t)

	current, latest, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, latest, current)
	assert.GreaterOrEqual(t, current, 1)
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "daynote.db")

	store := NewStore(path)
	require.NoError(t, store.Init(ctx))
	_, err := store.GetDB().Exec("UPDATE schema_version SET version = 999")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = NewStore(path).Load(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageUnavailable)
}

func TestCorruptRecords(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"malformed tasks json", `INSERT INTO days (day, month, year, tasks) VALUES (5, 3, 2024, '{not json')`},
		{"impossible date", `INSERT INTO days (day, month, year, tasks) VALUES (31, 2, 2024, '[]')`},
		{"task without text", `INSERT INTO days (day, month, year, tasks) VALUES (6, 3, 2024, '[{"text":"","createdDate":"6/3/2024","createdTime":"10:00:00"}]')`},
		{"year out of range", `INSERT INTO days (day, month, year, tasks) VALUES (1, 1, 0, '[]')`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			_, err := store.GetDB().Exec(tt.query)
			require.NoError(t, err)

			_, err = store.GetAll(context.Background())
			assert.ErrorIs(t, err, storage.ErrStorageRead)
			assert.ErrorIs(t, err, storage.ErrCorruptRecord)
		})
	}
}

func TestTasksStoredAsJSONArray(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	day := models.NewDay(models.Date{Day: 5, Month: 3, Year: 2024})
	day.Tasks = append(day.Tasks, models.Task{Text: "Buy milk", CreatedDate: "5/3/2024", CreatedTime: "14:05:09"})
	require.NoError(t, store.Upsert(ctx, &day))

	var raw string
	require.NoError(t, store.GetDB().QueryRow("SELECT tasks FROM days WHERE id = ?", day.ID.Value).Scan(&raw))
	assert.JSONEq(t, `[{"text":"Buy milk","createdDate":"5/3/2024","createdTime":"14:05:09"}]`, raw)
}

func TestEmptyTasksStoredAsEmptyArray(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	day := models.Day{Date: models.Date{Day: 5, Month: 3, Year: 2024}}
	require.NoError(t, store.Upsert(ctx, &day))

	var raw string
	require.NoError(t, store.GetDB().QueryRow("SELECT tasks FROM days WHERE id = ?", day.ID.Value).Scan(&raw))
	assert.Equal(t, "[]", raw)
}

func TestCancelledContext(t *testing.T) {
	store := setupTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.GetAll(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageRead)
}
