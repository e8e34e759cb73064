// Package storagetest holds the behavioural contract every storage.Provider
// backend must satisfy.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
)

// Factory prepares an empty storage location for one test and returns a
// constructor for unopened handles to it. Each call of the constructor
// must yield a fresh handle to the same location.
type Factory func(t *testing.T) func() storage.Provider

// Run executes the contract suite against a backend.
func Run(t *testing.T, factory Factory) {
	t.Run("OperationsBeforeInitFail", func(t *testing.T) {
		s := factory(t)()
		ctx := context.Background()

		_, err := s.GetAll(ctx)
		assert.ErrorIs(t, err, storage.ErrNotLoaded)
		_, _, err = s.FindByDate(ctx, models.Date{Day: 1, Month: 1, Year: 2024})
		assert.ErrorIs(t, err, storage.ErrNotLoaded)
		day := models.NewDay(models.Date{Day: 1, Month: 1, Year: 2024})
		assert.ErrorIs(t, s.Upsert(ctx, &day), storage.ErrNotLoaded)
		assert.False(t, day.ID.Valid)
	})

	t.Run("InitIsIdempotent", func(t *testing.T) {
		s := open(t, factory(t)())
		require.NoError(t, s.Init(context.Background()))

		days, err := s.GetAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, days)
	})

	t.Run("InitWritesDefaultSettings", func(t *testing.T) {
		s := open(t, factory(t)())

		settings, err := s.GetSettings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, storage.DefaultSettings(), settings)
	})

	t.Run("SaveSettingsPersists", func(t *testing.T) {
		newStore := factory(t)
		ctx := context.Background()
		s := open(t, newStore())
		require.NoError(t, s.SaveSettings(ctx, storage.Settings{Locale: "en"}))
		require.NoError(t, s.Close())

		reopened := load(t, newStore())
		settings, err := reopened.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, "en", settings.Locale)

		require.NoError(t, reopened.Init(ctx))
		settings, err = reopened.GetSettings(ctx)
		require.NoError(t, err)
		assert.Equal(t, "en", settings.Locale, "Init must not overwrite existing settings")
	})

	t.Run("FindByDateAbsent", func(t *testing.T) {
		s := open(t, factory(t)())

		day, found, err := s.FindByDate(context.Background(), models.Date{Day: 5, Month: 3, Year: 2024})
		require.NoError(t, err)
		assert.False(t, found)
		assert.False(t, day.ID.Valid)
	})

	t.Run("InsertAssignsID", func(t *testing.T) {
		s := open(t, factory(t)())
		ctx := context.Background()
		date := models.Date{Day: 5, Month: 3, Year: 2024}

		day := models.NewDay(date)
		require.NoError(t, s.Upsert(ctx, &day))
		require.True(t, day.ID.Valid, "insert must write the id back")

		got, found, err := s.FindByDate(ctx, date)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, day.ID, got.ID)
		assert.Equal(t, date, got.Date)
		assert.Empty(t, got.Tasks)
	})

	t.Run("IDsIncrease", func(t *testing.T) {
		s := open(t, factory(t)())
		ctx := context.Background()

		first := models.NewDay(models.Date{Day: 1, Month: 1, Year: 2024})
		second := models.NewDay(models.Date{Day: 2, Month: 1, Year: 2024})
		require.NoError(t, s.Upsert(ctx, &first))
		require.NoError(t, s.Upsert(ctx, &second))
		assert.Greater(t, second.ID.Value, first.ID.Value)
	})

	t.Run("DuplicateInsertViolatesUniqueIndex", func(t *testing.T) {
		s := open(t, factory(t)())
		ctx := context.Background()
		date := models.Date{Day: 5, Month: 3, Year: 2024}

		first := models.NewDay(date)
		require.NoError(t, s.Upsert(ctx, &first))

		second := models.NewDay(date)
		err := s.Upsert(ctx, &second)
		require.ErrorIs(t, err, storage.ErrUniqueConstraint)
		assert.False(t, second.ID.Valid)

		days, err := s.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, days, 1)
	})

	t.Run("UpdateKeepsTaskOrder", func(t *testing.T) {
		s := open(t, factory(t)())
		ctx := context.Background()
		date := models.Date{Day: 5, Month: 3, Year: 2024}

		day := models.NewDay(date)
		require.NoError(t, s.Upsert(ctx, &day))
		id := day.ID

		for _, text := range []string{"A", "B", "C"} {
			day.Tasks = append(day.Tasks, models.Task{Text: text, CreatedDate: "5/3/2024", CreatedTime: "09:00:00"})
			require.NoError(t, s.Upsert(ctx, &day))
			assert.Equal(t, id, day.ID, "update must not change the id")
		}

		got, found, err := s.FindByDate(ctx, date)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []string{"A", "B", "C"}, texts(got.Tasks))
	})

	t.Run("RoundTripSurvivesReopen", func(t *testing.T) {
		newStore := factory(t)
		ctx := context.Background()
		s := open(t, newStore())

		want := []models.Day{
			models.NewDay(models.Date{Day: 29, Month: 2, Year: 2024}),
			models.NewDay(models.Date{Day: 1, Month: 1, Year: 2000}),
		}
		want[0].Tasks = []models.Task{
			{Text: "Buy milk", CreatedDate: "29/2/2024", CreatedTime: "14:05:09"},
			{Text: "ñandú 日本", CreatedDate: "29/2/2024", CreatedTime: "14:06:00"},
		}
		for i := range want {
			require.NoError(t, s.Upsert(ctx, &want[i]))
		}
		require.NoError(t, s.Close())

		reopened := load(t, newStore())
		got, err := reopened.GetAll(ctx)
		require.NoError(t, err)
		models.SortDays(got)
		models.SortDays(want)
		assert.Equal(t, want, got)
	})

	t.Run("UpdateMissingID", func(t *testing.T) {
		s := open(t, factory(t)())

		day := models.NewDay(models.Date{Day: 5, Month: 3, Year: 2024})
		day.ID = models.NewDayID(9999)
		err := s.Upsert(context.Background(), &day)
		assert.ErrorIs(t, err, storage.ErrStorageWrite)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("InvalidDayRejectedOnWrite", func(t *testing.T) {
		s := open(t, factory(t)())
		ctx := context.Background()

		valid := models.NewDay(models.Date{Day: 5, Month: 3, Year: 2024})
		require.NoError(t, s.Upsert(ctx, &valid))

		impossible := models.NewDay(models.Date{Day: 31, Month: 2, Year: 2024})
		err := s.Upsert(ctx, &impossible)
		assert.ErrorIs(t, err, storage.ErrStorageWrite)
		assert.False(t, impossible.ID.Valid)

		blank := models.NewDay(models.Date{Day: 6, Month: 3, Year: 2024})
		blank.Tasks = []models.Task{{Text: "", CreatedDate: "6/3/2024", CreatedTime: "10:00:00"}}
		assert.ErrorIs(t, s.Upsert(ctx, &blank), storage.ErrStorageWrite)

		valid.Tasks = []models.Task{{Text: "", CreatedDate: "5/3/2024", CreatedTime: "10:00:00"}}
		assert.ErrorIs(t, s.Upsert(ctx, &valid), storage.ErrStorageWrite, "updates are checked too")

		days, err := s.GetAll(ctx)
		require.NoError(t, err, "a rejected write must leave the store readable")
		require.Len(t, days, 1)
		assert.Empty(t, days[0].Tasks)
	})

	t.Run("ConcurrentHandlesKeepEveryInsert", func(t *testing.T) {
		const handles, perHandle = 8, 5
		newStore := factory(t)
		ctx := context.Background()
		seed := open(t, newStore())

		stores := make([]storage.Provider, handles)
		for i := range stores {
			stores[i] = load(t, newStore())
		}

		var wg sync.WaitGroup
		distinct := make([]error, handles*perHandle)
		shared := make([]error, handles)
		for i, s := range stores {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for k := range perHandle {
					day := models.NewDay(models.Date{Day: k + 1, Month: i + 1, Year: 2024})
					distinct[i*perHandle+k] = s.Upsert(ctx, &day)
				}
				day := models.NewDay(models.Date{Day: 1, Month: 1, Year: 2030})
				shared[i] = s.Upsert(ctx, &day)
			}()
		}
		wg.Wait()

		for _, err := range distinct {
			require.NoError(t, err)
		}
		winners := 0
		for _, err := range shared {
			switch {
			case err == nil:
				winners++
			case errors.Is(err, storage.ErrUniqueConstraint):
			default:
				t.Errorf("unexpected error inserting a shared date: %v", err)
			}
		}
		assert.Equal(t, 1, winners, "exactly one writer may create a date")

		days, err := seed.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, days, handles*perHandle+1, "every acknowledged insert must be stored")
	})

	t.Run("UpdateIntoTakenDate", func(t *testing.T) {
		s := open(t, factory(t)())
		ctx := context.Background()

		a := models.NewDay(models.Date{Day: 1, Month: 1, Year: 2024})
		b := models.NewDay(models.Date{Day: 2, Month: 1, Year: 2024})
		require.NoError(t, s.Upsert(ctx, &a))
		require.NoError(t, s.Upsert(ctx, &b))

		b.Date = a.Date
		assert.ErrorIs(t, s.Upsert(ctx, &b), storage.ErrUniqueConstraint)
	})
}

func open(t *testing.T, s storage.Provider) storage.Provider {
	t.Helper()
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func load(t *testing.T, s storage.Provider) storage.Provider {
	t.Helper()
	require.NoError(t, s.Load(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func texts(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Text
	}
	return out
}
