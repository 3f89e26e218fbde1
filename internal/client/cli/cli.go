package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/auth"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/data"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/iocli"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/sync"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

//go:generate moq -out syncer_mock.go . Syncer
//go:generate moq -out catalog_mock.go . Catalog

// Syncer is the part of the sync manager used by commands
type Syncer interface {
	Sync(ctx context.Context) (*sync.DrainResult, error)
	Run(ctx context.Context) error
	Stats(ctx context.Context) (models.QueueStats, error)
	Conflicts(ctx context.Context) ([]*sync.Conflict, error)
	Resolve(ctx context.Context, table, localID string, choice sync.Resolution) error
}

// Catalog is the online product catalog and recognition API
type Catalog interface {
	ListProducts(ctx context.Context, accessToken string, productType, brand, q string, limit, offset int) (*api.ProductListResponse, error)
	GetProduct(ctx context.Context, accessToken, id string) (*models.Product, error)
	Recognize(ctx context.Context, accessToken, filename string, image io.Reader, productType string) (*api.RecognizeResponse, error)
}

// Cli holds the dependencies of the inked commands
type Cli struct {
	io          iocli.IO
	authService auth.Service
	dataService *data.Service
	store       storage.LocalStore
	syncer      Syncer
	catalog     Catalog
	now         func() time.Time
	bar         *progressbar.ProgressBar
}

// New creates a Cli
func New(io iocli.IO, authService auth.Service, dataService *data.Service, store storage.LocalStore, syncer Syncer, catalog Catalog) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		dataService: dataService,
		store:       store,
		syncer:      syncer,
		catalog:     catalog,
		now:         time.Now,
	}
}

// SetSyncer attaches the sync manager. The manager reports progress back
// through OnProgress, so it is usually built after the Cli.
func (c *Cli) SetSyncer(s Syncer) {
	c.syncer = s
}

// OnProgress advances the progress bar of a running sync
func (c *Cli) OnProgress(p sync.Progress) {
	if c.bar == nil {
		return
	}
	if p.Total > 0 && int64(p.Total) != c.bar.GetMax64() {
		c.bar.ChangeMax(p.Total)
	}
	_ = c.bar.Add(1)
}

// session returns the stored session or a hint to log in
func (c *Cli) session(ctx context.Context) (*storage.Session, error) {
	session, err := c.authService.Current(ctx)
	if errors.Is(err, auth.ErrNotLoggedIn) {
		return nil, fmt.Errorf("not logged in. Please run 'inked login' first")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// accessToken returns a valid bearer token for online commands
func (c *Cli) accessToken(ctx context.Context) (string, error) {
	token, err := c.authService.AccessToken(ctx)
	switch {
	case errors.Is(err, auth.ErrNotLoggedIn):
		return "", fmt.Errorf("not logged in. Please run 'inked login' first")
	case errors.Is(err, auth.ErrTokenExpired):
		return "", fmt.Errorf("access token has expired. Please login again")
	case err != nil:
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	return token, nil
}
