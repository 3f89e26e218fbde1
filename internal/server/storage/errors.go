package storage

import (
	"errors"
	"fmt"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// Common storage errors
var (
	// ErrRecordNotFound indicates that a synced record was not found
	ErrRecordNotFound = errors.New("record not found")

	// ErrProductNotFound indicates that a catalog product was not found
	ErrProductNotFound = errors.New("product not found")

	// ErrVersionConflict indicates that the base version is stale
	ErrVersionConflict = errors.New("version conflict")
)

// ConflictError carries the current server copy of a conflicting record
type ConflictError struct {
	Current     *api.Record
	BaseVersion int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: base version %d, current version %d", ErrVersionConflict, e.BaseVersion, e.Current.Version)
}

// Unwrap allows errors.Is(err, ErrVersionConflict)
func (e *ConflictError) Unwrap() error {
	return ErrVersionConflict
}
