package storage

import "errors"

var (
	// ErrStorageUnavailable means the store could not be opened or created.
	// Every operation fails until it is resolved.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageRead is a failed read; the logical operation may be retried.
	ErrStorageRead = errors.New("storage read failed")
	// ErrStorageWrite is a failed write; the logical operation may be retried.
	ErrStorageWrite = errors.New("storage write failed")
	// ErrUniqueConstraint is an insert of a date that already has a record.
	// The caller must resolve the existing id before upserting.
	ErrUniqueConstraint = errors.New("unique constraint violation on day date")

	// ErrNotFound is wrapped by ErrStorageWrite when an update targets a missing id.
	ErrNotFound = errors.New("record not found")
	// ErrCorruptRecord is wrapped by ErrStorageRead when a stored record fails validation.
	ErrCorruptRecord = errors.New("corrupt day record")
	// ErrNotLoaded is returned by operations issued before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
)
