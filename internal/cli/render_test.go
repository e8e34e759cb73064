package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/daynote/internal/app"
	"github.com/julianstephens/daynote/internal/models"
	"github.com/julianstephens/daynote/internal/storage"
	"github.com/julianstephens/daynote/internal/storage/sqlite"
)

func TestRenderDays(t *testing.T) {
	ctrl := app.New(nil, app.WithClock(func() time.Time {
		return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.Local)
	}))

	yesterday := models.NewDay(models.Date{Day: 4, Month: 3, Year: 2024})
	today := models.NewDay(models.Date{Day: 5, Month: 3, Year: 2024})
	today.Tasks = []models.Task{
		{Text: "Buy milk", CreatedDate: "5/3/2024", CreatedTime: "14:05:09"},
		{Text: "Call mom", CreatedDate: "5/3/2024", CreatedTime: "15:00:00"},
	}

	var buf bytes.Buffer
	RenderDays(&buf, ctrl, []models.Day{yesterday, today})

	want := "lunes 4  3/2024\n" +
		"  No tasks for this day.\n" +
		"\n" +
		"martes 5  3/2024  (today)\n" +
		"  14:05:09  Buy milk\n" +
		"  15:00:00  Call mom\n"
	if got := buf.String(); got != want {
		t.Errorf("RenderDays() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderDaysEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderDays(&buf, app.New(nil), nil)
	if buf.String() != "No days recorded yet.\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestNewContextUsesLocaleSetting(t *testing.T) {
	ctx := context.Background()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer store.Close()

	if got := NewContext(ctx, store).App.Locale().Name(); got != "es" {
		t.Errorf("default locale = %q, want es", got)
	}

	if err := store.SaveSettings(ctx, storage.Settings{Locale: "en"}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if got := NewContext(ctx, store).App.Locale().Name(); got != "en" {
		t.Errorf("locale = %q, want en", got)
	}

	if err := store.SaveSettings(ctx, storage.Settings{Locale: "klingon"}); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if got := NewContext(ctx, store).App.Locale().Name(); got != "es" {
		t.Errorf("unknown locale should fall back to es, got %q", got)
	}
}
