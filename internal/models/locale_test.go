package models

import (
	"testing"
	"time"
)

func TestLookupLocale(t *testing.T) {
	tests := []struct {
		tag    string
		want   string
		wantOK bool
	}{
		{"es", "es", true},
		{"es-ES", "es", true},
		{"es-MX", "es", true},
		{"en", "en", true},
		{"en-US", "en", true},
		{"en-GB", "en", true},
		{"", "es", false},
		{"not a tag", "es", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			loc, ok := LookupLocale(tt.tag)
			if ok != tt.wantOK {
				t.Errorf("LookupLocale(%q) ok = %v, want %v", tt.tag, ok, tt.wantOK)
			}
			if loc.Name() != tt.want {
				t.Errorf("LookupLocale(%q) = %q, want %q", tt.tag, loc.Name(), tt.want)
			}
		})
	}
}

func TestLocaleFormatting(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 14, 5, 9, 0, time.UTC)

	if got := Spanish.FormatDate(ts); got != "5/3/2024" {
		t.Errorf("Spanish.FormatDate() = %q", got)
	}
	if got := Spanish.FormatTime(ts); got != "14:05:09" {
		t.Errorf("Spanish.FormatTime() = %q", got)
	}
	if got := English.FormatDate(ts); got != "3/5/2024" {
		t.Errorf("English.FormatDate() = %q", got)
	}
	if got := English.FormatTime(ts); got != "2:05:09 PM" {
		t.Errorf("English.FormatTime() = %q", got)
	}
}
