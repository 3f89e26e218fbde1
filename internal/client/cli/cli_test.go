package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/auth"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/data"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/iocli"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage/boltdb"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

var testNow = time.Date(2025, 7, 4, 20, 0, 0, 0, time.UTC)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// lockedBuffer is a bytes.Buffer safe for concurrent writers
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type fixture struct {
	cli     *Cli
	out     *lockedBuffer
	store   *boltdb.Storage
	auth    *auth.ServiceMock
	syncer  *SyncerMock
	catalog *CatalogMock
}

// newFixture собирает Cli поверх временного BoltDB; input подаётся на stdin
func newFixture(t *testing.T, input string) *fixture {
	t.Helper()
	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "inked.db"), setupTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	n := 0
	dataService := data.NewService(store, setupTestLogger(),
		data.WithClock(func() time.Time { return testNow }),
		data.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}))

	f := &fixture{
		out:   &lockedBuffer{},
		store: store,
		auth: &auth.ServiceMock{
			CurrentFunc: func(ctx context.Context) (*storage.Session, error) {
				return &storage.Session{UserID: "user-1", Username: "aficionado", ExpiresAt: testNow.Add(time.Hour).Unix()}, nil
			},
			AccessTokenFunc: func(ctx context.Context) (string, error) {
				return "token-1", nil
			},
		},
		syncer: &SyncerMock{
			StatsFunc: func(ctx context.Context) (models.QueueStats, error) {
				entries, err := store.ListQueue(ctx)
				if err != nil {
					return models.QueueStats{}, err
				}
				return models.ComputeQueueStats(entries, testNow, time.Hour), nil
			},
		},
		catalog: &CatalogMock{},
	}
	f.cli = New(iocli.New(strings.NewReader(input), f.out), f.auth, dataService, store, f.syncer, f.catalog)
	f.cli.now = func() time.Time { return testNow }
	return f
}

// execute запускает команду через cobra так же, как main
func (f *fixture) execute(t *testing.T, args ...string) error {
	t.Helper()
	root := &cobra.Command{Use: "inked", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(Commands(func() *Cli { return f.cli })...)
	root.SetArgs(args)
	root.SetOut(f.out)
	root.SetErr(f.out)
	return root.ExecuteContext(context.Background())
}

func signToken(t *testing.T, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := api.TokenClaims{
		UserID:           userID,
		Username:         "aficionado",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiresAt)},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestCli_Login(t *testing.T) {
	token := signToken(t, "user-9", time.Now().Add(time.Hour))

	t.Run("from prompt", func(t *testing.T) {
		f := newFixture(t, token+"\n")
		f.auth.LoginFunc = func(ctx context.Context, accessToken string) (*storage.Session, error) {
			return &storage.Session{UserID: "user-9", Username: "aficionado", AccessToken: accessToken}, nil
		}

		require.NoError(t, f.execute(t, "login"))
		require.Len(t, f.auth.LoginCalls(), 1)
		assert.Equal(t, token, f.auth.LoginCalls()[0].AccessToken)
		assert.Contains(t, f.out.String(), "Access token: ")
		assert.Contains(t, f.out.String(), "aficionado (user-9)")
	})

	t.Run("from file", func(t *testing.T) {
		f := newFixture(t, "")
		f.auth.LoginFunc = func(ctx context.Context, accessToken string) (*storage.Session, error) {
			return &storage.Session{UserID: "user-9", Username: "aficionado", ExpiresAt: testNow.Unix()}, nil
		}
		path := filepath.Join(t.TempDir(), "token")
		require.NoError(t, os.WriteFile(path, []byte(token+"\n"), 0o600))

		require.NoError(t, f.execute(t, "login", "--token-file", path))
		assert.Equal(t, token, f.auth.LoginCalls()[0].AccessToken)
		assert.Contains(t, f.out.String(), "Token expires: 2025-07-04T20:00:00Z")
	})

	t.Run("rejected token", func(t *testing.T) {
		f := newFixture(t, "garbage\n")
		f.auth.LoginFunc = func(ctx context.Context, accessToken string) (*storage.Session, error) {
			return nil, auth.ErrInvalidToken
		}

		err := f.execute(t, "login")
		require.ErrorIs(t, err, auth.ErrInvalidToken)
		assert.Contains(t, err.Error(), "login failed")
	})
}

func TestCli_Logout(t *testing.T) {
	f := newFixture(t, "")
	f.auth.LogoutFunc = func(ctx context.Context) error { return nil }

	require.NoError(t, f.execute(t, "logout"))
	assert.Len(t, f.auth.LogoutCalls(), 1)
	assert.Contains(t, f.out.String(), "Logout successful")
	assert.NotContains(t, f.out.String(), "not sent yet")

	t.Run("unsent changes are kept", func(t *testing.T) {
		require.NoError(t, f.execute(t, "post", "Before I go"))
		f.out.Reset()

		require.NoError(t, f.execute(t, "logout"))
		assert.Contains(t, f.out.String(), "1 local change(s) were not sent yet")

		entries, err := f.store.ListQueue(context.Background())
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestCli_Status(t *testing.T) {
	t.Run("synchronized", func(t *testing.T) {
		f := newFixture(t, "")
		require.NoError(t, f.execute(t, "status"))
		assert.Contains(t, f.out.String(), "Session: aficionado (user-1)")
		assert.Contains(t, f.out.String(), "Token expires in: 1h0m0s")
		assert.Contains(t, f.out.String(), "All changes synchronized")
	})

	t.Run("pending and stale changes", func(t *testing.T) {
		f := newFixture(t, "")
		require.NoError(t, f.execute(t, "post", "Oliva Serie V tonight"))
		f.syncer.StatsFunc = func(ctx context.Context) (models.QueueStats, error) {
			return models.QueueStats{Total: 3, Pending: 1, Failed: 1, Conflict: 1, Stale: 1}, nil
		}
		f.out.Reset()

		require.NoError(t, f.execute(t, "status"))
		out := f.out.String()
		assert.Contains(t, out, "Outbox: 3 change(s) waiting")
		assert.Contains(t, out, "1 change(s) have been waiting too long")
		assert.Contains(t, out, "inked conflicts")
		assert.Contains(t, out, "inked queue retry")
	})

	t.Run("not logged in", func(t *testing.T) {
		f := newFixture(t, "")
		f.auth.CurrentFunc = func(ctx context.Context) (*storage.Session, error) {
			return nil, auth.ErrNotLoggedIn
		}
		require.NoError(t, f.execute(t, "status"))
		assert.Contains(t, f.out.String(), "Not logged in")
	})
}

func TestCli_Add(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	require.NoError(t, f.execute(t, "post", "Padron 1964 Anniversary", "--product", "prod-1"))
	require.NoError(t, f.execute(t, "comment", "id-1", "Maduro?"))
	require.NoError(t, f.execute(t, "rate", "prod-1", "4.5", "--notes", "cedar,leather"))
	require.NoError(t, f.execute(t, "collect", "prod-2", "--type", "wine", "-n", "6", "--location", "cellar"))
	require.NoError(t, f.execute(t, "follow", "user-2"))
	require.NoError(t, f.execute(t, "follow", "user-2"))
	assert.Contains(t, f.out.String(), "Already following user-2")

	post, err := f.store.GetRecord(ctx, models.TablePosts, "id-1")
	require.NoError(t, err)
	var p models.Post
	require.NoError(t, post.Decode(&p))
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, 1, p.CommentCount)

	ratings, err := f.store.Query(ctx, storage.Query{Table: models.TableRatings})
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	var r models.Rating
	require.NoError(t, ratings[0].Decode(&r))
	assert.Equal(t, models.ProductCigar, r.ProductType)
	assert.Equal(t, []string{"cedar", "leather"}, r.Attributes.FlavorNotes)

	items, err := f.store.Query(ctx, storage.Query{Table: models.TableCollectionItems})
	require.NoError(t, err)
	require.Len(t, items, 1)
	var item models.CollectionItem
	require.NoError(t, items[0].Decode(&item))
	assert.Equal(t, 6, item.Quantity)
	assert.Equal(t, models.ProductWine, item.ProductType)

	entries, err := f.store.ListQueue(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 5)

	t.Run("validation errors", func(t *testing.T) {
		assert.Error(t, f.execute(t, "rate", "prod-1", "abc"))
		assert.Error(t, f.execute(t, "rate", "prod-3", "9"))
		assert.Error(t, f.execute(t, "collect", "prod-1", "--type", "whisky"))
		assert.Error(t, f.execute(t, "post"))
	})

	t.Run("not logged in", func(t *testing.T) {
		f.auth.CurrentFunc = func(ctx context.Context) (*storage.Session, error) {
			return nil, auth.ErrNotLoggedIn
		}
		err := f.execute(t, "post", "offline but anonymous")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inked login")
	})
}

func TestCli_Profile(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	require.NoError(t, f.execute(t, "profile", "--display-name", "Smoke Ring"))
	require.NoError(t, f.execute(t, "profile", "--bio", "Maduro fan", "--birth-date", "1990-01-15"))

	users, err := f.store.Query(ctx, storage.Query{Table: models.TableUsers})
	require.NoError(t, err)
	require.Len(t, users, 1)

	var u models.User
	require.NoError(t, users[0].Decode(&u))
	assert.Equal(t, "aficionado", u.Username)
	assert.Equal(t, "Smoke Ring", u.DisplayName)
	assert.Equal(t, "Maduro fan", u.Bio)
	assert.True(t, u.AgeVerified)

	// Второй вызов сливается с неотправленным create
	entries, err := f.store.ListQueue(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.OpCreate, entries[0].Op)

	t.Run("underage", func(t *testing.T) {
		assert.Error(t, f.execute(t, "profile", "--birth-date", "2010-01-01"))
	})
	t.Run("bad date", func(t *testing.T) {
		assert.Error(t, f.execute(t, "profile", "--birth-date", "15/01/1990"))
	})
}
