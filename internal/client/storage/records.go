package storage

import (
	"context"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// Sort fields supported by Query.
const (
	OrderByCreatedAt = "created_at"
	OrderByUpdatedAt = "updated_at"
)

// Query selects local records of one table.
// Where holds equality predicates over indexed fields.
type Query struct {
	Where          map[string]string
	Table          string
	OrderBy        string // created_at (по умолчанию) или updated_at
	Limit          int
	Offset         int
	Desc           bool
	IncludeDeleted bool
}

// Tx is a storage transaction spanning records and the sync queue.
// Everything written through one Tx commits or rolls back together.
type Tx interface {
	// GetRecord returns ErrRecordNotFound if the record does not exist
	GetRecord(table, localID string) (*models.Record, error)

	// PutRecord creates or replaces a record and maintains its indexes
	PutRecord(rec *models.Record) error

	// DeleteRecord removes a record and its index entries; missing records are ignored
	DeleteRecord(table, localID string) error

	// Query returns records matching q
	Query(q Query) ([]*models.Record, error)

	// Enqueue appends an outbound mutation, coalescing it with a pending
	// never-sent entry for the same record. A nil entry means the mutation
	// cancelled out an unsynced create and nothing remains to send.
	Enqueue(entry *models.QueueEntry) (*models.QueueEntry, error)

	// GetEntry returns ErrEntryNotFound if the entry does not exist
	GetEntry(seq uint64) (*models.QueueEntry, error)

	// PutEntry replaces an existing entry
	PutEntry(entry *models.QueueEntry) error

	// DeleteEntry removes an entry
	DeleteEntry(seq uint64) error

	// EntriesFor returns the entries of one record ordered by sequence
	EntriesFor(table, localID string) ([]*models.QueueEntry, error)

	// ListQueue returns all entries ordered by priority desc, sequence asc
	ListQueue() ([]*models.QueueEntry, error)
}

// RecordStorage is the local reactive record store.
type RecordStorage interface {
	// Update runs fn in a read-write transaction.
	// Subscribers are notified after commit and before Update returns.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// View runs fn in a read-only transaction
	View(ctx context.Context, fn func(tx Tx) error) error

	// GetRecord reads a single record
	GetRecord(ctx context.Context, table, localID string) (*models.Record, error)

	// Query reads records matching q
	Query(ctx context.Context, q Query) ([]*models.Record, error)

	// Subscribe registers a live query. fn receives the current results
	// immediately and again after every commit touching q.Table.
	Subscribe(q Query, fn func([]*models.Record)) (unsubscribe func(), err error)
}

// QueueStorage exposes outbox maintenance operations.
type QueueStorage interface {
	// ListQueue returns all entries in drain order
	ListQueue(ctx context.Context) ([]*models.QueueEntry, error)

	// RecoverInFlight returns entries left in_flight by a crash to pending
	RecoverInFlight(ctx context.Context) (int, error)

	// RetryFailed resets failed entries to pending with a fresh attempt budget
	RetryFailed(ctx context.Context) (int, error)
}

// LocalStore is everything the sync manager needs from local storage.
type LocalStore interface {
	RecordStorage
	QueueStorage
	MetadataStorage
}
