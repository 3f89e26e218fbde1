package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// GetRecord reads a single record
func (s *Storage) GetRecord(ctx context.Context, table, localID string) (*models.Record, error) {
	var rec *models.Record
	err := s.View(ctx, func(tx storage.Tx) error {
		var err error
		rec, err = tx.GetRecord(table, localID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Query reads records matching q
func (s *Storage) Query(ctx context.Context, q storage.Query) ([]*models.Record, error) {
	var recs []*models.Record
	err := s.View(ctx, func(tx storage.Tx) error {
		var err error
		recs, err = tx.Query(q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (t *boltTx) tableBucket(table string, create bool) (*bbolt.Bucket, *bbolt.Bucket, error) {
	records := t.tx.Bucket(bucketRecords)
	index := t.tx.Bucket(bucketIndex)
	if records == nil || index == nil {
		return nil, nil, fmt.Errorf("records bucket not found")
	}

	if !create {
		return records.Bucket([]byte(table)), index.Bucket([]byte(table)), nil
	}

	rb, err := records.CreateBucketIfNotExists([]byte(table))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s records bucket: %w", table, err)
	}
	ib, err := index.CreateBucketIfNotExists([]byte(table))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s index bucket: %w", table, err)
	}
	return rb, ib, nil
}

// GetRecord implements storage.Tx
func (t *boltTx) GetRecord(table, localID string) (*models.Record, error) {
	rb, _, err := t.tableBucket(table, false)
	if err != nil {
		return nil, err
	}
	if rb == nil {
		return nil, storage.ErrRecordNotFound
	}
	return decodeRecord(rb.Get([]byte(localID)))
}

// PutRecord implements storage.Tx
func (t *boltTx) PutRecord(rec *models.Record) error {
	if err := t.writable(); err != nil {
		return err
	}
	if rec.Table == "" || rec.LocalID == "" {
		return fmt.Errorf("record table and local id are required")
	}

	rb, ib, err := t.tableBucket(rec.Table, true)
	if err != nil {
		return err
	}

	// Удаляем старые ключи индекса перед записью новых
	if old := rb.Get([]byte(rec.LocalID)); old != nil {
		prev, err := decodeRecord(old)
		if err != nil {
			return err
		}
		if err := removeIndex(ib, prev); err != nil {
			return err
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := rb.Put([]byte(rec.LocalID), data); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	for field, value := range rec.Index {
		if err := ib.Put(indexKey(field, value, rec.LocalID), nil); err != nil {
			return fmt.Errorf("failed to save index: %w", err)
		}
	}

	t.touched[rec.Table] = struct{}{}
	return nil
}

// DeleteRecord implements storage.Tx
func (t *boltTx) DeleteRecord(table, localID string) error {
	if err := t.writable(); err != nil {
		return err
	}

	rb, ib, err := t.tableBucket(table, false)
	if err != nil {
		return err
	}
	if rb == nil {
		return nil
	}

	data := rb.Get([]byte(localID))
	if data == nil {
		return nil
	}
	prev, err := decodeRecord(data)
	if err != nil {
		return err
	}
	if ib != nil {
		if err := removeIndex(ib, prev); err != nil {
			return err
		}
	}
	if err := rb.Delete([]byte(localID)); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	t.touched[table] = struct{}{}
	return nil
}

// Query implements storage.Tx.
// The first predicate (by field name) is served from the index bucket,
// remaining predicates filter the loaded records.
func (t *boltTx) Query(q storage.Query) ([]*models.Record, error) {
	rb, ib, err := t.tableBucket(q.Table, false)
	if err != nil {
		return nil, err
	}
	result := make([]*models.Record, 0)
	if rb == nil {
		return result, nil
	}

	collect := func(data []byte) error {
		rec, err := decodeRecord(data)
		if err != nil {
			return err
		}
		if rec.Deleted && !q.IncludeDeleted {
			return nil
		}
		if !matches(rec, q.Where) {
			return nil
		}
		result = append(result, rec)
		return nil
	}

	if len(q.Where) > 0 && ib != nil {
		fields := make([]string, 0, len(q.Where))
		for f := range q.Where {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		prefix := indexPrefix(fields[0], q.Where[fields[0]])
		c := ib.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			data := rb.Get(k[len(prefix):])
			if data == nil {
				continue
			}
			if err := collect(data); err != nil {
				return nil, err
			}
		}
	} else if len(q.Where) == 0 {
		if err := rb.ForEach(func(_, v []byte) error { return collect(v) }); err != nil {
			return nil, err
		}
	}

	sortRecords(result, q.OrderBy, q.Desc)
	return paginate(result, q.Offset, q.Limit), nil
}

func matches(rec *models.Record, where map[string]string) bool {
	for field, value := range where {
		if rec.Index[field] != value {
			return false
		}
	}
	return true
}

func sortRecords(recs []*models.Record, orderBy string, desc bool) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].CreatedAt, recs[j].CreatedAt
		if orderBy == storage.OrderByUpdatedAt {
			a, b = recs[i].UpdatedAt, recs[j].UpdatedAt
		}
		if a.Equal(b) {
			if desc {
				return recs[i].LocalID > recs[j].LocalID
			}
			return recs[i].LocalID < recs[j].LocalID
		}
		if desc {
			return a.After(b)
		}
		return a.Before(b)
	})
}

func paginate(recs []*models.Record, offset, limit int) []*models.Record {
	if offset > 0 {
		if offset >= len(recs) {
			return recs[:0]
		}
		recs = recs[offset:]
	}
	if limit > 0 && limit < len(recs) {
		recs = recs[:limit]
	}
	return recs
}

func decodeRecord(data []byte) (*models.Record, error) {
	if data == nil {
		return nil, storage.ErrRecordNotFound
	}
	rec := &models.Record{}
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

// indexKey формирует ключ вида field\x00value\x00localID
func indexKey(field, value, localID string) []byte {
	return append(indexPrefix(field, value), localID...)
}

func indexPrefix(field, value string) []byte {
	key := make([]byte, 0, len(field)+len(value)+2)
	key = append(key, field...)
	key = append(key, 0)
	key = append(key, value...)
	return append(key, 0)
}

func removeIndex(ib *bbolt.Bucket, rec *models.Record) error {
	for field, value := range rec.Index {
		if err := ib.Delete(indexKey(field, value, rec.LocalID)); err != nil {
			return fmt.Errorf("failed to delete index: %w", err)
		}
	}
	return nil
}
