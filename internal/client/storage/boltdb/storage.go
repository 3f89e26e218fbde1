package boltdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
)

var (
	// BoltDB bucket names
	bucketSession  = []byte("session")
	bucketMetadata = []byte("metadata")
	bucketRecords  = []byte("records") // вложенный bucket на каждую таблицу
	bucketIndex    = []byte("index")   // вложенный bucket на каждую таблицу
	bucketQueue    = []byte("queue")
)

// Storage represents BoltDB storage implementation for client.
// Records, their indexes and the sync queue live in one file so that a
// domain write and its queue entry commit atomically.
type Storage struct {
	db     *bbolt.DB
	logger *slog.Logger
	subs   map[uint64]*subscription
	nextID uint64
	subsMu sync.Mutex
}

var (
	_ storage.LocalStore     = (*Storage)(nil)
	_ storage.SessionStorage = (*Storage)(nil)
)

// New creates a new BoltDB storage instance
// dbPath is the path to the BoltDB database file
func New(ctx context.Context, dbPath string, logger *slog.Logger) (*Storage, error) {
	// Открываем BoltDB
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &Storage{
		db:     db,
		logger: logger,
		subs:   make(map[uint64]*subscription),
	}

	// Инициализируем buckets
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize buckets: %w", err)
	}

	// Записи, оставшиеся in_flight после падения, возвращаем в pending
	recovered, err := s.RecoverInFlight(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to recover queue: %w", err)
	}
	if recovered > 0 {
		logger.Info("Recovered interrupted queue entries", "count", recovered)
	}

	return s, nil
}

// Close closes the database connection. It waits for running transactions;
// calls made after Close fail with storage.ErrStorageClosed. Closing twice is
// a no-op.
func (s *Storage) Close() error {
	return s.db.Close()
}

// initBuckets создает необходимые buckets если они не существуют
func (s *Storage) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketSession, bucketMetadata, bucketRecords, bucketIndex, bucketQueue} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

// Update runs fn in a read-write transaction. Live queries over the tables
// touched by fn are refreshed from the commit hook, before Update returns.
func (s *Storage) Update(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(btx *bbolt.Tx) error {
		t := newTx(btx)
		if err := fn(t); err != nil {
			return err
		}
		if len(t.touched) > 0 {
			touched := t.touched
			btx.OnCommit(func() { s.notify(touched) })
		}
		return nil
	})
	return mapErr(err)
}

// View runs fn in a read-only transaction
func (s *Storage) View(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(btx *bbolt.Tx) error {
		return fn(newTx(btx))
	})
	return mapErr(err)
}

func mapErr(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return storage.ErrStorageClosed
	}
	return err
}

// boltTx implements storage.Tx over a bbolt transaction
type boltTx struct {
	tx      *bbolt.Tx
	touched map[string]struct{}
}

func newTx(tx *bbolt.Tx) *boltTx {
	return &boltTx{tx: tx, touched: make(map[string]struct{})}
}

func (t *boltTx) writable() error {
	if !t.tx.Writable() {
		return storage.ErrReadOnlyTx
	}
	return nil
}
