package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// markSynced помечает запись подтверждённой сервером и убирает её из очереди
func markSynced(t *testing.T, f *fixture, table, id string) {
	t.Helper()
	require.NoError(t, f.store.Update(context.Background(), func(tx storage.Tx) error {
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
		rec.ServerVersion = 3
		rec.SyncStatus = models.StatusSynced
		return tx.PutRecord(rec)
	}))
}

func TestCli_List(t *testing.T) {
	f := newFixture(t, "")
	require.NoError(t, f.execute(t, "post", "First smoke of the season"))
	require.NoError(t, f.execute(t, "post", "Second"))
	markSynced(t, f, models.TablePosts, "id-1")

	f.out.Reset()
	require.NoError(t, f.execute(t, "list", "posts"))
	out := f.out.String()
	assert.Contains(t, out, "=== posts ===")
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Total: 2 record(s)")

	lines := strings.Split(out, "\n")
	var synced, localOnly bool
	for _, line := range lines {
		if strings.HasPrefix(line, "id-1") {
			synced = strings.Contains(line, string(models.StateSynced)) && strings.Contains(line, "3")
		}
		if strings.HasPrefix(line, "id-2") {
			localOnly = strings.Contains(line, string(models.StateLocalOnly))
		}
	}
	assert.True(t, synced, out)
	assert.True(t, localOnly, out)

	t.Run("mine", func(t *testing.T) {
		require.NoError(t, f.execute(t, "follow", "user-7"))
		f.out.Reset()
		require.NoError(t, f.execute(t, "list", "follows", "--mine"))
		assert.Contains(t, f.out.String(), "user-1 -> user-7")
	})

	t.Run("empty", func(t *testing.T) {
		f.out.Reset()
		require.NoError(t, f.execute(t, "list", "ratings"))
		assert.Contains(t, f.out.String(), "No records found.")
	})

	t.Run("unknown table", func(t *testing.T) {
		err := f.execute(t, "list", "products")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown table")
	})
}

func TestCli_ListWatch(t *testing.T) {
	f := newFixture(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	running := make(chan struct{})
	f.syncer.RunFunc = func(ctx context.Context) error {
		close(running)
		<-ctx.Done()
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- f.cli.runList(ctx, listOptions{Table: models.TablePosts, Limit: 10, Watch: true})
	}()
	<-running

	_, err := f.cli.dataService.CreatePost(ctx, &models.Post{UserID: "user-1", Content: "live from the lounge"})
	require.NoError(t, err)

	// Ждём, пока подписка выведет новую запись
	require.Eventually(t, func() bool {
		return strings.Contains(f.out.String(), "live from the lounge")
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		entity models.Entity
		want   string
	}{
		{
			name:   "user",
			entity: &models.User{ID: "u", Username: "smoke_ring", DisplayName: "Smoke Ring"},
			want:   "@smoke_ring Smoke Ring",
		},
		{
			name:   "post",
			entity: &models.Post{ID: "p", Content: "Liga Privada\n  No. 9", CommentCount: 2},
			want:   "Liga Privada No. 9 [2 comments]",
		},
		{
			name:   "rating",
			entity: &models.Rating{ID: "r", ProductID: "prod-1", ProductType: models.ProductBeer, Score: 3.5},
			want:   "beer prod-1 3.5/5",
		},
		{
			name:   "collection item",
			entity: &models.CollectionItem{ID: "c", ProductID: "prod-2", ProductType: models.ProductWine, Quantity: 6},
			want:   "wine prod-2 x6",
		},
		{
			name:   "follow",
			entity: &models.Follow{ID: "f", FollowerID: "a", FolloweeID: "b"},
			want:   "a -> b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := models.NewRecord(tt.entity, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, summarize(rec))
		})
	}

	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
