package data

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage/boltdb"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/validation"
)

var testNow = time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestService создаёт сервис поверх временного BoltDB с предсказуемыми id
func newTestService(t *testing.T) (*Service, *boltdb.Storage) {
	t.Helper()
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "inked.db"), setupTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	n := 0
	svc := NewService(store, setupTestLogger(),
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}))
	return svc, store
}

func queueOf(t *testing.T, store *boltdb.Storage) []*models.QueueEntry {
	t.Helper()
	entries, err := store.ListQueue(context.Background())
	require.NoError(t, err)
	return entries
}

func markSynced(t *testing.T, store *boltdb.Storage, table, id string) {
	t.Helper()
	require.NoError(t, store.Update(context.Background(), func(tx storage.Tx) error {
		entries, err := tx.EntriesFor(table, id)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := tx.DeleteEntry(e.Seq); err != nil {
				return err
			}
		}
		rec, err := tx.GetRecord(table, id)
		if err != nil {
			return err
		}
		rec.ServerID = "srv-" + id
		rec.ServerVersion = 1
		rec.SyncStatus = models.StatusSynced
		return tx.PutRecord(rec)
	}))
}

func TestService_CreatePost(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rec, err := svc.CreatePost(ctx, &models.Post{UserID: "user-1", Content: "Padron 1964 tonight"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", rec.LocalID)
	assert.Equal(t, models.StatusPending, rec.SyncStatus)
	assert.Empty(t, rec.ServerID)

	entries := queueOf(t, store)
	require.Len(t, entries, 1)
	assert.Equal(t, models.OpCreate, entries[0].Op)
	assert.Equal(t, models.TablePosts, entries[0].Table)
	assert.JSONEq(t, string(rec.Fields), string(entries[0].Payload))

	_, err = svc.CreatePost(ctx, &models.Post{UserID: "user-1", Content: "  "})
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.Len(t, queueOf(t, store), 1)
}

func TestService_AddComment(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	post, err := svc.CreatePost(ctx, &models.Post{UserID: "user-1", Content: "Which wrapper?"})
	require.NoError(t, err)

	_, err = svc.AddComment(ctx, &models.Comment{UserID: "user-2", PostID: post.LocalID, Content: "Maduro"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, models.TablePosts, post.LocalID)
	require.NoError(t, err)
	var p models.Post
	require.NoError(t, got.Decode(&p))
	assert.Equal(t, 1, p.CommentCount)

	// Счётчик ведёт сервер: post не ставится в очередь повторно
	entries := queueOf(t, store)
	require.Len(t, entries, 2)
	assert.Equal(t, models.TablePosts, entries[0].Table)
	assert.Equal(t, models.TableComments, entries[1].Table)

	t.Run("rollback on failure", func(t *testing.T) {
		_, err := svc.AddComment(ctx, &models.Comment{ID: entries[1].RecordID, UserID: "user-2", PostID: post.LocalID, Content: "again"})
		require.ErrorIs(t, err, ErrDuplicate)

		got, err := svc.Get(ctx, models.TablePosts, post.LocalID)
		require.NoError(t, err)
		require.NoError(t, got.Decode(&p))
		assert.Equal(t, 1, p.CommentCount)
		assert.Len(t, queueOf(t, store), 2)
	})

	t.Run("delete decrements counter", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, models.TableComments, entries[1].RecordID))

		got, err := svc.Get(ctx, models.TablePosts, post.LocalID)
		require.NoError(t, err)
		require.NoError(t, got.Decode(&p))
		assert.Equal(t, 0, p.CommentCount)
	})
}

func TestService_RateTwiceUpdates(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	first, err := svc.Rate(ctx, &models.Rating{UserID: "user-1", ProductID: "prod-1", ProductType: models.ProductCigar, Score: 4})
	require.NoError(t, err)

	second, err := svc.Rate(ctx, &models.Rating{UserID: "user-1", ProductID: "prod-1", ProductType: models.ProductCigar, Score: 4.5})
	require.NoError(t, err)
	assert.Equal(t, first.LocalID, second.LocalID)

	recs, err := svc.List(ctx, storage.Query{Table: models.TableRatings})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// Update сливается с неотправленным create
	entries := queueOf(t, store)
	require.Len(t, entries, 1)
	assert.Equal(t, models.OpCreate, entries[0].Op)
	var r models.Rating
	require.NoError(t, recs[0].Decode(&r))
	assert.InDelta(t, 4.5, r.Score, 1e-9)

	_, err = svc.Rate(ctx, &models.Rating{UserID: "user-1", ProductID: "prod-2", ProductType: models.ProductCigar, Score: 7})
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestService_Follow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Follow(ctx, "user-1", "user-2")
	require.NoError(t, err)

	_, err = svc.Follow(ctx, "user-1", "user-2")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = svc.Follow(ctx, "user-1", "user-1")
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestService_Delete(t *testing.T) {
	t.Run("unsynced create is dropped", func(t *testing.T) {
		svc, store := newTestService(t)
		ctx := context.Background()

		rec, err := svc.CreatePost(ctx, &models.Post{UserID: "user-1", Content: "oops"})
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, models.TablePosts, rec.LocalID))

		assert.Empty(t, queueOf(t, store))
		_, err = store.GetRecord(ctx, models.TablePosts, rec.LocalID)
		assert.ErrorIs(t, err, storage.ErrRecordNotFound)
	})

	t.Run("synced record is tombstoned", func(t *testing.T) {
		svc, store := newTestService(t)
		ctx := context.Background()

		rec, err := svc.CreatePost(ctx, &models.Post{UserID: "user-1", Content: "keep for a while"})
		require.NoError(t, err)
		markSynced(t, store, models.TablePosts, rec.LocalID)

		require.NoError(t, svc.Delete(ctx, models.TablePosts, rec.LocalID))

		entries := queueOf(t, store)
		require.Len(t, entries, 1)
		assert.Equal(t, models.OpDelete, entries[0].Op)
		assert.Equal(t, models.PriorityHigh, entries[0].Priority)

		stored, err := store.GetRecord(ctx, models.TablePosts, rec.LocalID)
		require.NoError(t, err)
		assert.True(t, stored.Deleted)
		assert.Equal(t, models.StatusPending, stored.SyncStatus)

		_, err = svc.Get(ctx, models.TablePosts, rec.LocalID)
		assert.ErrorIs(t, err, storage.ErrRecordNotFound)

		recs, err := svc.List(ctx, storage.Query{Table: models.TablePosts})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})

	t.Run("collection delete keeps normal priority", func(t *testing.T) {
		svc, store := newTestService(t)
		ctx := context.Background()

		rec, err := svc.AddToCollection(ctx, &models.CollectionItem{UserID: "user-1", ProductID: "prod-1", ProductType: models.ProductWine})
		require.NoError(t, err)
		markSynced(t, store, models.TableCollectionItems, rec.LocalID)

		require.NoError(t, svc.Delete(ctx, models.TableCollectionItems, rec.LocalID))
		entries := queueOf(t, store)
		require.Len(t, entries, 1)
		assert.Equal(t, models.PriorityNormal, entries[0].Priority)
	})
}

func TestService_UpdateSyncedRecord(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	rec, err := svc.CreateProfile(ctx, &models.User{UserID: "user-1", Username: "smoke_ring"})
	require.NoError(t, err)
	markSynced(t, store, models.TableUsers, rec.LocalID)

	updated, err := svc.UpdateProfile(ctx, &models.User{ID: rec.LocalID, UserID: "user-1", Username: "smoke_ring", Bio: "Maduro fan"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.SyncStatus)
	assert.Equal(t, "srv-"+rec.LocalID, updated.ServerID)

	entries := queueOf(t, store)
	require.Len(t, entries, 1)
	assert.Equal(t, models.OpUpdate, entries[0].Op)

	// Возрастной ценз проверяется при подтверждении возраста
	_, err = svc.UpdateProfile(ctx, &models.User{
		ID: rec.LocalID, UserID: "user-1", Username: "smoke_ring",
		AgeVerified: true, BirthDate: testNow.AddDate(-18, 0, 0),
	})
	assert.ErrorIs(t, err, validation.ErrInvalid)

	_, err = svc.Update(ctx, &models.Post{ID: "missing", Content: "x"})
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestService_Watch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var seen [][]*models.Record
	unsubscribe, err := svc.Watch(storage.Query{Table: models.TablePosts, Where: map[string]string{"user_id": "user-1"}},
		func(recs []*models.Record) { seen = append(seen, recs) })
	require.NoError(t, err)
	defer unsubscribe()

	_, err = svc.CreatePost(ctx, &models.Post{UserID: "user-1", Content: "live"})
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, &models.Post{UserID: "user-2", Content: "other feed"})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(seen), 2)
	assert.Empty(t, seen[0])
	assert.Len(t, seen[len(seen)-1], 1)
}
