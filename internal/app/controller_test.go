package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
	"github.com/julianstephens/daynote/internal/storage/jsonfile"
	"github.com/julianstephens/daynote/internal/storage/sqlite"
)

func fixedClock(year int, month time.Month, day, hour, min, sec int) func() time.Time {
	t := time.Date(year, month, day, hour, min, sec, 0, time.Local)
	return func() time.Time { return t }
}

func backends(t *testing.T) map[string]func() storage.Provider {
	dir := t.TempDir()
	return map[string]func() storage.Provider{
		"sqlite":   func() storage.Provider { return sqlite.NewStore(filepath.Join(dir, "daynote.db")) },
		"jsonfile": func() storage.Provider { return jsonfile.NewStore(filepath.Join(dir, "daynote.json")) },
	}
}

func openStore(t *testing.T, newStore func() storage.Provider) storage.Provider {
	t.Helper()
	s := newStore()
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScenario(t *testing.T) {
	for name, newStore := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c := New(openStore(t, newStore), WithClock(fixedClock(2024, time.March, 5, 14, 5, 9)))

			days, err := c.EnsureToday(ctx)
			require.NoError(t, err)
			require.Len(t, days, 1)
			today := days[0]
			assert.Equal(t, models.Date{Day: 5, Month: 3, Year: 2024}, today.Date)
			assert.True(t, today.ID.Valid)
			assert.Empty(t, today.Tasks)
			assert.Equal(t, "martes", c.WeekdayName(today))

			days, err = c.AddTask(ctx, &today, "Buy milk")
			require.NoError(t, err)
			require.Len(t, days, 1)
			require.Len(t, days[0].Tasks, 1)
			assert.Equal(t, models.Task{Text: "Buy milk", CreatedDate: "5/3/2024", CreatedTime: "14:05:09"}, days[0].Tasks[0])

			days, err = c.EnsureToday(ctx)
			require.NoError(t, err)
			require.Len(t, days, 1)
			assert.Equal(t, []models.Task{{Text: "Buy milk", CreatedDate: "5/3/2024", CreatedTime: "14:05:09"}}, days[0].Tasks)
		})
	}
}

func TestEnsureTodayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	c := New(openStore(t, backends(t)["sqlite"]), WithClock(fixedClock(2024, time.March, 5, 9, 0, 0)))

	for i := 0; i < 3; i++ {
		days, err := c.EnsureToday(ctx)
		require.NoError(t, err)
		assert.Len(t, days, 1)
	}
}

func TestEnsureTodayReturnsChronologicalOrder(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, backends(t)["sqlite"])

	// Insert out of order so id order differs from date order.
	for _, date := range []models.Date{{Day: 10, Month: 3, Year: 2024}, {Day: 1, Month: 1, Year: 2023}} {
		day := models.NewDay(date)
		require.NoError(t, store.Upsert(ctx, &day))
	}

	c := New(store, WithClock(fixedClock(2024, time.February, 29, 12, 0, 0)))
	days, err := c.EnsureToday(ctx)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, []models.Date{
		{Day: 1, Month: 1, Year: 2023},
		{Day: 29, Month: 2, Year: 2024},
		{Day: 10, Month: 3, Year: 2024},
	}, []models.Date{days[0].Date, days[1].Date, days[2].Date})
}

func TestAddTaskKeepsOrder(t *testing.T) {
	ctx := context.Background()
	c := New(openStore(t, backends(t)["jsonfile"]), WithClock(fixedClock(2024, time.March, 5, 8, 0, 0)))

	days, err := c.EnsureToday(ctx)
	require.NoError(t, err)
	day := days[0]

	for _, text := range []string{"A", "  B  ", "C"} {
		_, err := c.AddTask(ctx, &day, text)
		require.NoError(t, err)
	}

	stored, found, err := c.Find(ctx, day.Date)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, stored.Tasks, 3)
	assert.Equal(t, "A", stored.Tasks[0].Text)
	assert.Equal(t, "B", stored.Tasks[1].Text, "text is trimmed")
	assert.Equal(t, "C", stored.Tasks[2].Text)
}

func TestAddTaskEmptyText(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Provider: openStore(t, backends(t)["sqlite"])}
	c := New(store, WithClock(fixedClock(2024, time.March, 5, 8, 0, 0)))

	days, err := c.EnsureToday(ctx)
	require.NoError(t, err)
	day := days[0]
	store.reset()

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := c.AddTask(ctx, &day, text)
		assert.ErrorIs(t, err, models.ErrEmptyTask)
	}
	assert.Empty(t, day.Tasks)
	assert.Zero(t, store.upserts)
	assert.Zero(t, store.finds)
}

func TestAddTaskResolvesIDOnlyWhenUnknown(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Provider: openStore(t, backends(t)["sqlite"])}
	c := New(store, WithClock(fixedClock(2024, time.March, 5, 8, 0, 0)))

	days, err := c.EnsureToday(ctx)
	require.NoError(t, err)
	day := days[0]
	store.reset()

	_, err = c.AddTask(ctx, &day, "known id")
	require.NoError(t, err)
	assert.Zero(t, store.finds, "a Day with an id must not be looked up")
	assert.Equal(t, 1, store.upserts)
}

func TestAddTaskAdoptsIDOfConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	newStore := backends(t)["sqlite"]
	mine := openStore(t, newStore)
	theirs := openStore(t, newStore)
	date := models.Date{Day: 5, Month: 3, Year: 2024}

	// Another process created today's record after this session built its Day.
	other := models.NewDay(date)
	other.Tasks = append(other.Tasks, models.Task{Text: "from elsewhere", CreatedDate: "5/3/2024", CreatedTime: "07:00:00"})
	require.NoError(t, theirs.Upsert(ctx, &other))

	c := New(mine, WithClock(fixedClock(2024, time.March, 5, 8, 0, 0)))
	day := models.NewDay(date)
	days, err := c.AddTask(ctx, &day, "mine")
	require.NoError(t, err)

	require.Len(t, days, 1)
	assert.Equal(t, other.ID, day.ID)
	// The in-memory Day wins: its tasks replace the stored ones.
	require.Len(t, days[0].Tasks, 1)
	assert.Equal(t, "mine", days[0].Tasks[0].Text)
}

func TestAddTaskInsertsWhenNoRecordExists(t *testing.T) {
	ctx := context.Background()
	c := New(openStore(t, backends(t)["sqlite"]), WithClock(fixedClock(2024, time.March, 5, 8, 0, 0)))

	day := models.NewDay(models.Date{Day: 4, Month: 3, Year: 2024})
	days, err := c.AddTask(ctx, &day, "late entry")
	require.NoError(t, err)
	assert.True(t, day.ID.Valid)
	require.Len(t, days, 1)
	assert.Equal(t, "late entry", days[0].Tasks[0].Text)
}

func TestAddTaskRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	store := &countingStore{Provider: openStore(t, backends(t)["sqlite"]), upsertErr: boom}
	c := New(store, WithClock(fixedClock(2024, time.March, 5, 8, 0, 0)))

	day := models.NewDay(models.Date{Day: 5, Month: 3, Year: 2024})
	day.ID = models.NewDayID(1)
	_, err := c.AddTask(ctx, &day, "lost")
	require.ErrorIs(t, err, boom)
	assert.Empty(t, day.Tasks)
}

func TestEnsureTodayToleratesConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	inner := openStore(t, backends(t)["sqlite"])
	date := models.Date{Day: 5, Month: 3, Year: 2024}

	// Another writer inserts the date between our lookup and our insert.
	existing := models.NewDay(date)
	require.NoError(t, inner.Upsert(ctx, &existing))
	store := &staleFindStore{Provider: inner}
	c := New(store, WithClock(fixedClock(2024, time.March, 5, 8, 0, 0)))

	days, err := c.EnsureToday(ctx)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, existing.ID, days[0].ID)
}

func TestEnsureDayUsesGivenDate(t *testing.T) {
	ctx := context.Background()
	c := New(openStore(t, backends(t)["sqlite"]), WithClock(fixedClock(2024, time.March, 6, 0, 0, 0)))

	date := models.Date{Day: 5, Month: 3, Year: 2024}
	days, err := c.EnsureDay(ctx, date)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, date, days[0].Date)
}

func TestErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "never-opened.db"))
	c := New(store)

	_, err := c.EnsureToday(ctx)
	assert.ErrorIs(t, err, storage.ErrNotLoaded)
	_, err = c.Days(ctx)
	assert.ErrorIs(t, err, storage.ErrNotLoaded)
}

func TestLocaleOption(t *testing.T) {
	en, ok := models.LookupLocale("en")
	require.True(t, ok)

	c := New(nil, WithLocale(en), WithClock(fixedClock(2024, time.March, 5, 0, 0, 0)))
	assert.Equal(t, "Tuesday", c.WeekdayName(models.NewDay(c.Today())))
	assert.Equal(t, en, c.Locale())
}

type countingStore struct {
	storage.Provider
	finds, upserts int
	upsertErr      error
}

func (s *countingStore) reset() {
	s.finds, s.upserts = 0, 0
}

func (s *countingStore) FindByDate(ctx context.Context, date models.Date) (models.Day, bool, error) {
	s.finds++
	return s.Provider.FindByDate(ctx, date)
}

func (s *countingStore) Upsert(ctx context.Context, day *models.Day) error {
	s.upserts++
	if s.upsertErr != nil {
		return s.upsertErr
	}
	return s.Provider.Upsert(ctx, day)
}

// staleFindStore never finds a record, like a lookup that ran before
// another writer's insert.
type staleFindStore struct {
	storage.Provider
}

func (s *staleFindStore) FindByDate(context.Context, models.Date) (models.Day, bool, error) {
	return models.Day{}, false, nil
}
