package backup

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "daynote.db")
	ctx := context.Background()

	store := sqlite.NewStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	defer store.Close()

	day := models.NewDay(models.Date{Day: 5, Month: 3, Year: 2024})
	day.Tasks = append(day.Tasks, models.Task{Text: "Buy milk", CreatedDate: "5/3/2024", CreatedTime: "14:05:09"})
	if err := store.Upsert(ctx, &day); err != nil {
		t.Fatalf("failed to insert test day: %v", err)
	}
	return dbPath
}

func countDays(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM days").Scan(&n); err != nil {
		t.Fatalf("failed to count days: %v", err)
	}
	return n
}

func stepClock(start time.Time, step time.Duration) func() time.Time {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(func() time.Time {
		return time.Date(2024, 3, 5, 14, 5, 9, 0, time.Local)
	}))

	path, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	want := filepath.Join(filepath.Dir(dbPath), DirName, "daynote-20240305-140509.db")
	if path != want {
		t.Errorf("expected backup at %s, got %s", want, path)
	}
	if n := countDays(t, path); n != 1 {
		t.Errorf("expected 1 day in backup, got %d", n)
	}

	// Same second: a counter keeps the name unique.
	second, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if filepath.Base(second) != "daynote-20240305-140509-1.db" {
		t.Errorf("unexpected second backup name: %s", second)
	}
}

func TestCreateWithNoDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))

	_, err := mgr.Create(context.Background())
	if !errors.Is(err, ErrNoDatabase) {
		t.Errorf("expected ErrNoDatabase, got %v", err)
	}
	if _, err := os.Stat(mgr.Dir()); !os.IsNotExist(err) {
		t.Error("backup directory should not be created without a database")
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath,
		WithKeep(3),
		WithClock(stepClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local), time.Hour)))

	var paths []string
	for range 5 {
		path, err := mgr.Create(context.Background())
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		paths = append(paths, path)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	if backups[0].Path != paths[4] || backups[2].Path != paths[2] {
		t.Errorf("rotation kept the wrong backups: %+v", backups)
	}
	if _, err := os.Stat(paths[0]); !os.IsNotExist(err) {
		t.Error("oldest backup should have been removed")
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(filepath.Join(dir, "daynote.db"))

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List on missing directory failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups, got %d", len(backups))
	}

	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"daynote-20240301-090000.db",
		"daynote-20240302-090000.db",
		"daynote-20240302-090000-1.db",
		"daynote-notadate.db",
		"daynote-20240303-090000-x.db",
		"other.db",
		"daynote-20240304-090000.json",
	} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var names []string
	for _, b := range backups {
		names = append(names, filepath.Base(b.Path))
	}
	want := []string{"daynote-20240302-090000-1.db", "daynote-20240302-090000.db", "daynote-20240301-090000.db"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	ctx := context.Background()
	mgr := NewManager(dbPath, WithClock(stepClock(time.Date(2024, 3, 5, 9, 0, 0, 0, time.Local), time.Minute)))

	snapshot, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	day := models.NewDay(models.Date{Day: 6, Month: 3, Year: 2024})
	if err := store.Upsert(ctx, &day); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	store.Close()

	if n := countDays(t, dbPath); n != 2 {
		t.Fatalf("expected 2 days before restore, got %d", n)
	}

	previous, err := mgr.Restore(ctx, snapshot)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n := countDays(t, dbPath); n != 1 {
		t.Errorf("expected 1 day after restore, got %d", n)
	}
	if previous == "" {
		t.Fatal("expected the current database to be backed up before restore")
	}
	if n := countDays(t, previous); n != 2 {
		t.Errorf("pre-restore backup should hold 2 days, got %d", n)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	dir := t.TempDir()
	ctx := context.Background()
	mgr := NewManager(dbPath)

	garbage := filepath.Join(dir, "garbage.db")
	if err := os.WriteFile(garbage, []byte("this is not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	foreign := filepath.Join(dir, "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY)"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	for _, path := range []string{garbage, foreign, filepath.Join(dir, "missing.db")} {
		if _, err := mgr.Restore(ctx, path); !errors.Is(err, ErrInvalidBackup) {
			t.Errorf("Restore(%s): expected ErrInvalidBackup, got %v", filepath.Base(path), err)
		}
	}
	if n := countDays(t, dbPath); n != 1 {
		t.Errorf("database should be untouched, has %d days", n)
	}
}
