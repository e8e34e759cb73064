package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/julianstephens/daynote/internal/storage"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", stderrors.New("boom"), "Error: boom"},
		{
			"unavailable",
			fmt.Errorf("%w: no such file", storage.ErrStorageUnavailable),
			"Error: storage unavailable: no such file\n  hint: run 'daynote init' or check --config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.err); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("%w: %w", storage.ErrStorageWrite, storage.ErrUniqueConstraint), true},
		{fmt.Errorf("%w: day 7", storage.ErrCorruptRecord), true},
		{fmt.Errorf("%w: timeout", storage.ErrStorageRead), true},
		{stderrors.New("other"), false},
	}

	for _, tt := range tests {
		if got := Hint(tt.err); (got != "") != tt.want {
			t.Errorf("Hint(%v) = %q, want hint present = %v", tt.err, got, tt.want)
		}
	}

	// Unique violations get a specific hint even when wrapped in a write error.
	got := Hint(fmt.Errorf("%w: %w", storage.ErrStorageWrite, storage.ErrUniqueConstraint))
	if got != "a record for that date already exists; reload and retry" {
		t.Errorf("unexpected hint for unique violation: %q", got)
	}
}
