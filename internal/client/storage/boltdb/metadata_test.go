package boltdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func TestSaveAndGetPullCursor(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	// Изначально курсор равен 0
	cursor, err := store.GetPullCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cursor)

	require.NoError(t, store.SavePullCursor(ctx, 42))

	cursor, err = store.GetPullCursor(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cursor)
}

func TestGetPullCursor_BucketMissing(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.DeleteBucket(bucketMetadata)
	})
	require.NoError(t, err)

	_, err = store.GetPullCursor(ctx)
	assert.ErrorContains(t, err, "metadata bucket not found")

	err = store.SavePullCursor(ctx, 1)
	assert.ErrorContains(t, err, "metadata bucket not found")
}
