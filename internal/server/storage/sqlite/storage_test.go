package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

var testNow = time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)

// setupTestStorage создаёт хранилище во временном файле
func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "server.db"), WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func createRecord(t *testing.T, s *Storage, table, userID string, e models.Entity) *api.Record {
	t.Helper()
	rec, created, err := s.CreateRecord(context.Background(), &api.Record{
		Table:    table,
		ClientID: e.RecordID(),
		UserID:   userID,
		Data:     mustJSON(t, e),
	})
	require.NoError(t, err)
	require.True(t, created)
	return rec
}

func TestStorage_Migrations(t *testing.T) {
	s := setupTestStorage(t)
	require.NoError(t, s.Ping(context.Background()))

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n))
	assert.Zero(t, n)

	// Повторный запуск миграций на той же базе ничего не ломает
	require.NoError(t, s.runMigrations(context.Background()))
}

func TestStorage_CreateRecordIdempotent(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	post := &models.Post{ID: "local-1", UserID: "user-1", Content: "first light"}
	first := createRecord(t, s, models.TablePosts, "user-1", post)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "local-1", first.ClientID)
	assert.Equal(t, int64(1), first.Version)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, testNow, first.CreatedAt)

	again, created, err := s.CreateRecord(ctx, &api.Record{
		Table: models.TablePosts, ClientID: "local-1", UserID: "user-1",
		Data: mustJSON(t, &models.Post{ID: "local-1", UserID: "user-1", Content: "retried"}),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, first.Seq, again.Seq)

	var p models.Post
	require.NoError(t, json.Unmarshal(again.Data, &p))
	assert.Equal(t, "first light", p.Content)

	got, err := s.GetRecord(ctx, models.TablePosts, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ClientID, got.ClientID)

	_, err = s.GetRecord(ctx, models.TableComments, first.ID)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestStorage_UpdateRecord(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	rating := &models.Rating{ID: "r-1", UserID: "user-1", ProductID: "p-1", ProductType: models.ProductCigar, Score: 3}
	rec := createRecord(t, s, models.TableRatings, "user-1", rating)

	rating.Score = 4
	updated, err := s.UpdateRecord(ctx, models.TableRatings, rec.ID, mustJSON(t, rating), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Greater(t, updated.Seq, rec.Seq)

	rating.Score = 5
	_, err = s.UpdateRecord(ctx, models.TableRatings, rec.ID, mustJSON(t, rating), 1)
	require.ErrorIs(t, err, storage.ErrVersionConflict)

	var conflict *storage.ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(2), conflict.Current.Version)
	assert.JSONEq(t, string(updated.Data), string(conflict.Current.Data))

	_, err = s.UpdateRecord(ctx, models.TableRatings, "missing", mustJSON(t, rating), 1)
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}

func TestStorage_DeleteRecord(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	rec := createRecord(t, s, models.TableFollows, "user-1", &models.Follow{ID: "f-1", FollowerID: "user-1", FolloweeID: "user-2"})

	_, err := s.DeleteRecord(ctx, models.TableFollows, rec.ID, 7)
	require.ErrorIs(t, err, storage.ErrVersionConflict)

	deleted, err := s.DeleteRecord(ctx, models.TableFollows, rec.ID, 1)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.Equal(t, int64(2), deleted.Version)

	again, err := s.DeleteRecord(ctx, models.TableFollows, rec.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, deleted.Seq, again.Seq)

	// Обновление удалённой записи всегда конфликт
	_, err = s.UpdateRecord(ctx, models.TableFollows, rec.ID, rec.Data, 2)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	live, err := s.ListRecords(ctx, models.TableFollows, "user-1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, live)

	changes, err := s.Changes(ctx, "user-1", 0, 10)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].Deleted)
}

func TestStorage_Changes(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	createRecord(t, s, models.TablePosts, "user-1", &models.Post{ID: "p-1", UserID: "user-1", Content: "a"})
	createRecord(t, s, models.TableCollectionItems, "user-1", &models.CollectionItem{ID: "c-1", UserID: "user-1", ProductID: "x", ProductType: models.ProductCigar, Quantity: 1})
	createRecord(t, s, models.TablePosts, "user-2", &models.Post{ID: "p-2", UserID: "user-2", Content: "b"})
	createRecord(t, s, models.TableCollectionItems, "user-2", &models.CollectionItem{ID: "c-2", UserID: "user-2", ProductID: "y", ProductType: models.ProductWine, Quantity: 2})

	changes, err := s.Changes(ctx, "user-1", 0, 10)
	require.NoError(t, err)
	var ids []string
	for _, c := range changes {
		ids = append(ids, c.ClientID)
	}
	assert.Equal(t, []string{"p-1", "c-1", "p-2"}, ids)

	page, err := s.Changes(ctx, "user-1", changes[0].Seq, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c-1", page[0].ClientID)

	own, err := s.ListRecords(ctx, models.TableCollectionItems, "user-2", 10, 0)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "c-2", own[0].ClientID)
}

func commentCount(t *testing.T, s *Storage, id string) (int, *api.Record) {
	t.Helper()
	rec, err := s.GetRecord(context.Background(), models.TablePosts, id)
	require.NoError(t, err)
	var p models.Post
	require.NoError(t, json.Unmarshal(rec.Data, &p))
	return p.CommentCount, rec
}

func TestStorage_CommentCount(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	post := createRecord(t, s, models.TablePosts, "user-1", &models.Post{ID: "post-1", UserID: "user-1", Content: "Behike night", CommentCount: 9})
	count, _ := commentCount(t, s, post.ID)
	assert.Zero(t, count, "client supplied counter is ignored")

	comment := createRecord(t, s, models.TableComments, "user-2", &models.Comment{ID: "cm-1", UserID: "user-2", PostID: "post-1", Content: "enjoy"})
	count, rec := commentCount(t, s, post.ID)
	assert.Equal(t, 1, count)
	assert.Equal(t, int64(1), rec.Version, "counter does not bump the version")
	assert.Greater(t, rec.Seq, comment.Seq, "counter change is pulled")

	// Правка поста владельцем не затирает счётчик
	updated, err := s.UpdateRecord(ctx, models.TablePosts, post.ID,
		mustJSON(t, &models.Post{ID: "post-1", UserID: "user-1", Content: "Behike night, edited"}), 1)
	require.NoError(t, err)
	var p models.Post
	require.NoError(t, json.Unmarshal(updated.Data, &p))
	assert.Equal(t, 1, p.CommentCount)

	_, err = s.DeleteRecord(ctx, models.TableComments, comment.ID, 1)
	require.NoError(t, err)
	count, _ = commentCount(t, s, post.ID)
	assert.Zero(t, count)

	t.Run("comment before post", func(t *testing.T) {
		createRecord(t, s, models.TableComments, "user-2", &models.Comment{ID: "cm-2", UserID: "user-2", PostID: "post-2", Content: "early"})
		late := createRecord(t, s, models.TablePosts, "user-1", &models.Post{ID: "post-2", UserID: "user-1", Content: "late"})
		count, _ := commentCount(t, s, late.ID)
		assert.Equal(t, 1, count)
	})
}

func TestStorage_RatingAggregates(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	product := &models.Product{Type: models.ProductCigar, Brand: "Padron", Name: "1964 Anniversary", Size: "toro", AverageRating: 5, RatingCount: 99}
	require.NoError(t, s.CreateProduct(ctx, product))
	require.NotEmpty(t, product.ID)

	got, err := s.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RatingCount)

	r1 := createRecord(t, s, models.TableRatings, "user-1", &models.Rating{ID: "r-1", UserID: "user-1", ProductID: product.ID, ProductType: models.ProductCigar, Score: 4})
	createRecord(t, s, models.TableRatings, "user-2", &models.Rating{ID: "r-2", UserID: "user-2", ProductID: product.ID, ProductType: models.ProductCigar, Score: 5})

	got, err = s.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.RatingCount)
	assert.InDelta(t, 4.5, got.AverageRating, 1e-9)

	_, err = s.UpdateRecord(ctx, models.TableRatings, r1.ID,
		mustJSON(t, &models.Rating{ID: "r-1", UserID: "user-1", ProductID: product.ID, ProductType: models.ProductCigar, Score: 3}), 1)
	require.NoError(t, err)
	got, err = s.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.AverageRating, 1e-9)

	_, err = s.DeleteRecord(ctx, models.TableRatings, r1.ID, 2)
	require.NoError(t, err)
	got, err = s.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RatingCount)
	assert.InDelta(t, 5.0, got.AverageRating, 1e-9)
}

func TestStorage_SearchProducts(t *testing.T) {
	s := setupTestStorage(t)
	ctx := context.Background()

	for _, p := range []*models.Product{
		{Type: models.ProductCigar, Brand: "Cohiba Atmosphere", Name: "Robusto", Size: "robusto"},
		{Type: models.ProductCigar, Brand: "Cohiba", Name: "Behike 52", Size: "robusto"},
		{Type: models.ProductCigar, Brand: "Cohiba", Name: "Siglo VI", Size: "canonazo"},
		{Type: models.ProductCigar, Brand: "Montecristo", Name: "No. 2", Size: "torpedo"},
		{Type: models.ProductWine, Brand: "Cohiba Cellars", Name: "100%_Red", Size: ""},
	} {
		require.NoError(t, s.CreateProduct(ctx, p))
	}

	names := func(ps []*models.Product) []string {
		out := make([]string, 0, len(ps))
		for _, p := range ps {
			out = append(out, p.Brand+"/"+p.Name)
		}
		return out
	}

	got, err := s.SearchProducts(ctx, models.ProductFilter{Type: models.ProductCigar, Brand: "cohiba"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cohiba/Behike 52", "Cohiba/Siglo VI", "Cohiba Atmosphere/Robusto"}, names(got))

	got, err = s.SearchProducts(ctx, models.ProductFilter{Type: models.ProductCigar, Brand: "cohiba", Name: "behike", Size: "Robusto"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cohiba/Behike 52"}, names(got))

	got, err = s.SearchProducts(ctx, models.ProductFilter{Query: "montecristo no"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Montecristo/No. 2"}, names(got))

	// Символы LIKE экранируются
	got, err = s.SearchProducts(ctx, models.ProductFilter{Name: "100%_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cohiba Cellars/100%_Red"}, names(got))
	got, err = s.SearchProducts(ctx, models.ProductFilter{Name: "%"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = s.SearchProducts(ctx, models.ProductFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = s.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
}
