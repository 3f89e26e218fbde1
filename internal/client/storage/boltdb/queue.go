package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// ListQueue returns all entries in drain order
func (s *Storage) ListQueue(ctx context.Context) ([]*models.QueueEntry, error) {
	var entries []*models.QueueEntry
	err := s.View(ctx, func(tx storage.Tx) error {
		var err error
		entries, err = tx.ListQueue()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	return entries, nil
}

// RecoverInFlight returns entries left in_flight by a crash to pending.
// The interrupted attempt is not counted; the entry stays marked as sent.
func (s *Storage) RecoverInFlight(ctx context.Context) (int, error) {
	return s.resetEntries(ctx, models.EntryInFlight, false)
}

// RetryFailed resets failed entries to pending with a fresh attempt budget
func (s *Storage) RetryFailed(ctx context.Context) (int, error) {
	return s.resetEntries(ctx, models.EntryFailed, true)
}

func (s *Storage) resetEntries(ctx context.Context, from models.EntryState, clearAttempts bool) (int, error) {
	count := 0
	err := s.Update(ctx, func(tx storage.Tx) error {
		entries, err := tx.ListQueue()
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.State != from {
				continue
			}
			e.State = models.EntryPending
			if clearAttempts {
				e.Attempts = 0
				e.LastError = ""
				e.NextAttemptAt = time.Time{}
			}
			if err := tx.PutEntry(e); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to reset %s entries: %w", from, err)
	}
	return count, nil
}

// Enqueue implements storage.Tx.
//
// Coalescing only touches the newest entry of the record, and only while that
// entry is pending and has never been sent. An entry that was sent and then
// canceled or recovered after a crash may already be applied on the server,
// so later mutations travel separately.
func (t *boltTx) Enqueue(entry *models.QueueEntry) (*models.QueueEntry, error) {
	if err := t.writable(); err != nil {
		return nil, err
	}

	existing, err := t.EntriesFor(entry.Table, entry.RecordID)
	if err != nil {
		return nil, err
	}

	if n := len(existing); n > 0 {
		last := existing[n-1]
		if last.State == models.EntryPending {
			// Повторная постановка той же мутации ничего не меняет
			if last.Checksum == entry.Checksum {
				return last, nil
			}
			if !last.Sent {
				merged, keep := coalesce(last, entry)
				if !keep {
					if err := t.DeleteEntry(last.Seq); err != nil {
						return nil, err
					}
					return nil, nil
				}
				if merged {
					if entry.Priority > last.Priority {
						last.Priority = entry.Priority
					}
					if err := t.PutEntry(last); err != nil {
						return nil, err
					}
					return last, nil
				}
			}
		}
	}

	q := t.tx.Bucket(bucketQueue)
	if q == nil {
		return nil, fmt.Errorf("queue bucket not found")
	}
	seq, err := q.NextSequence()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate queue sequence: %w", err)
	}
	entry.Seq = seq
	if entry.State == "" {
		entry.State = models.EntryPending
	}
	if err := t.putEntry(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// coalesce folds next into last. merged reports that last now carries next;
// keep=false means both cancel out.
func coalesce(last, next *models.QueueEntry) (merged, keep bool) {
	switch {
	case last.Op == models.OpCreate && next.Op == models.OpDelete:
		return false, false
	case last.Op == models.OpCreate && (next.Op == models.OpUpdate || next.Op == models.OpCreate):
		last.SetPayload(models.OpCreate, next.Payload)
		return true, true
	case last.Op == models.OpUpdate && (next.Op == models.OpUpdate || next.Op == models.OpDelete):
		last.SetPayload(next.Op, next.Payload)
		return true, true
	default:
		return false, true
	}
}

// GetEntry implements storage.Tx
func (t *boltTx) GetEntry(seq uint64) (*models.QueueEntry, error) {
	q := t.tx.Bucket(bucketQueue)
	if q == nil {
		return nil, fmt.Errorf("queue bucket not found")
	}
	data := q.Get(seqKey(seq))
	if data == nil {
		return nil, storage.ErrEntryNotFound
	}
	return decodeEntry(data)
}

// PutEntry implements storage.Tx
func (t *boltTx) PutEntry(entry *models.QueueEntry) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, err := t.GetEntry(entry.Seq); err != nil {
		return err
	}
	return t.putEntry(entry)
}

func (t *boltTx) putEntry(entry *models.QueueEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal queue entry: %w", err)
	}
	if err := t.tx.Bucket(bucketQueue).Put(seqKey(entry.Seq), data); err != nil {
		return fmt.Errorf("failed to save queue entry: %w", err)
	}
	return nil
}

// DeleteEntry implements storage.Tx
func (t *boltTx) DeleteEntry(seq uint64) error {
	if err := t.writable(); err != nil {
		return err
	}
	q := t.tx.Bucket(bucketQueue)
	if q == nil {
		return fmt.Errorf("queue bucket not found")
	}
	if err := q.Delete(seqKey(seq)); err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	return nil
}

// EntriesFor implements storage.Tx
func (t *boltTx) EntriesFor(table, localID string) ([]*models.QueueEntry, error) {
	all, err := t.allEntries()
	if err != nil {
		return nil, err
	}
	// Ключи упорядочены по seq, поэтому порядок сохраняется
	out := make([]*models.QueueEntry, 0)
	for _, e := range all {
		if e.Table == table && e.RecordID == localID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListQueue implements storage.Tx
func (t *boltTx) ListQueue() ([]*models.QueueEntry, error) {
	all, err := t.allEntries()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Priority != all[j].Priority {
			return all[i].Priority > all[j].Priority
		}
		return all[i].Seq < all[j].Seq
	})
	return all, nil
}

func (t *boltTx) allEntries() ([]*models.QueueEntry, error) {
	q := t.tx.Bucket(bucketQueue)
	if q == nil {
		return nil, fmt.Errorf("queue bucket not found")
	}
	entries := make([]*models.QueueEntry, 0)
	err := q.ForEach(func(_, v []byte) error {
		e, err := decodeEntry(v)
		if err != nil {
			return err
		}
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func decodeEntry(data []byte) (*models.QueueEntry, error) {
	e := &models.QueueEntry{}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue entry: %w", err)
	}
	return e, nil
}

// seqKey кодирует seq в big-endian, чтобы курсор обходил записи по порядку
func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
