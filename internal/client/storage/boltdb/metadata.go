package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

const (
	keyPullCursor = "pull_cursor"
)

// SavePullCursor saves the server change sequence reached by the last pull
func (s *Storage) SavePullCursor(ctx context.Context, cursor int64) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		// Конвертируем int64 в bytes
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(cursor))

		return bucket.Put([]byte(keyPullCursor), buf)
	})
	if err != nil {
		return fmt.Errorf("failed to save pull cursor: %w", mapErr(err))
	}
	return nil
}

// GetPullCursor retrieves the last pull cursor
// Returns 0 if no pull has been performed yet
func (s *Storage) GetPullCursor(ctx context.Context) (int64, error) {
	var cursor int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		buf := bucket.Get([]byte(keyPullCursor))
		if buf == nil {
			// Первая синхронизация
			return nil
		}

		cursor = int64(binary.BigEndian.Uint64(buf))
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get pull cursor: %w", mapErr(err))
	}

	return cursor, nil
}
