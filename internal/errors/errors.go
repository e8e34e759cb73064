package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/daynote/internal/logger"
	"github.com/julianstephens/daynote/internal/storage"
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\n  hint: " + hint
	}
	return msg
}

// Hint returns a short remediation for storage failures, or "" when there is none.
func Hint(err error) string {
	switch {
	case stderrors.Is(err, storage.ErrStorageUnavailable):
		return "run 'daynote init' or check --config"
	case stderrors.Is(err, storage.ErrUniqueConstraint):
		return "a record for that date already exists; reload and retry"
	case stderrors.Is(err, storage.ErrCorruptRecord):
		return "run 'daynote doctor' to find the damaged record"
	case stderrors.Is(err, storage.ErrStorageRead), stderrors.Is(err, storage.ErrStorageWrite):
		return "the operation can be retried"
	}
	return ""
}

// Fatal logs err, prints it with its hint, and exits with status 1. A nil err is a no-op.
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
