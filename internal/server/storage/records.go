package storage

import (
	"context"
	"encoding/json"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// RecordStorage defines persistence for synced records of every table
type RecordStorage interface {
	// CreateRecord inserts a record keyed by (table, client id).
	// If a record with the same key exists it is returned unchanged and
	// created is false.
	CreateRecord(ctx context.Context, rec *api.Record) (stored *api.Record, created bool, err error)

	// GetRecord retrieves a record by server id, including deleted ones.
	// Returns ErrRecordNotFound if it doesn't exist.
	GetRecord(ctx context.Context, table, id string) (*api.Record, error)

	// UpdateRecord replaces the data of a record whose version equals
	// baseVersion. Returns *ConflictError on a version mismatch.
	UpdateRecord(ctx context.Context, table, id string, data json.RawMessage, baseVersion int64) (*api.Record, error)

	// DeleteRecord soft-deletes a record whose version equals baseVersion.
	// Deleting an already deleted record returns it unchanged.
	DeleteRecord(ctx context.Context, table, id string, baseVersion int64) (*api.Record, error)

	// ListRecords returns live records of a user in creation order
	ListRecords(ctx context.Context, table, userID string, limit, offset int) ([]api.Record, error)

	// Changes returns records visible to userID changed after since,
	// ordered by sequence, deleted ones included
	Changes(ctx context.Context, userID string, since int64, limit int) ([]api.Record, error)
}
