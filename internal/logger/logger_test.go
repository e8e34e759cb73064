package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestInitWritesWarningsToFile(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { Logger = nil })

	if err := Init(Config{Dir: dir}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Logger.GetLevel() != log.WarnLevel {
		t.Errorf("level = %v, want warn", Logger.GetLevel())
	}

	Debug("day lookup", "date", "2024-03-05")
	Warn("locale fallback", "requested", "xx")
	Error("upsert failed", "error", "boom")

	data, err := os.ReadFile(LogFile(dir))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	got := string(data)
	if strings.Contains(got, "day lookup") {
		t.Error("debug record written outside debug mode")
	}
	for _, want := range []string{"locale fallback", "requested=xx", "upsert failed"} {
		if !strings.Contains(got, want) {
			t.Errorf("log file missing %q:\n%s", want, got)
		}
	}
}

func TestInitDebugMode(t *testing.T) {
	dir := t.TempDir()
	t.Cleanup(func() { Logger = nil })

	if err := Init(Config{Debug: true, Dir: dir}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", Logger.GetLevel())
	}
	Debug("store opened", "backend", "sqlite")

	data, err := os.ReadFile(filepath.Join(dir, "logs", "daynote.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "store opened") {
		t.Errorf("debug record missing:\n%s", data)
	}
}

func TestCallsBeforeInitAreDropped(t *testing.T) {
	Logger = nil

	Debug("dropped")
	Warn("dropped")
	Error("dropped")
}
