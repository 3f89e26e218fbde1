package storage

import "errors"

// Common client storage errors
var (
	// ErrSessionNotFound indicates that no session is stored
	ErrSessionNotFound = errors.New("session not found")

	// ErrRecordNotFound indicates that a local record does not exist
	ErrRecordNotFound = errors.New("record not found")

	// ErrEntryNotFound indicates that a queue entry does not exist
	ErrEntryNotFound = errors.New("queue entry not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")

	// ErrReadOnlyTx indicates a write attempt inside a read transaction
	ErrReadOnlyTx = errors.New("write in read-only transaction")
)
