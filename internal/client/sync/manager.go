package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

//go:generate moq -out remote_mock.go . Remote TokenSource

// Remote is the remote sync API consumed by the manager
type Remote interface {
	Health(ctx context.Context) error
	CreateRecord(ctx context.Context, accessToken, table string, req api.CreateRecordRequest) (*api.Record, error)
	UpdateRecord(ctx context.Context, accessToken, table, id string, req api.UpdateRecordRequest) (*api.Record, error)
	DeleteRecord(ctx context.Context, accessToken, table, id string, baseVersion int64) (*api.Record, error)
	Changes(ctx context.Context, accessToken string, since int64, limit int) (*api.ChangesResponse, error)
}

// TokenSource provides the bearer token for remote calls
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Config holds sync manager settings
type Config struct {
	Concurrency    int           `mapstructure:"concurrency"`     // параллельных lane
	MaxAttempts    int           `mapstructure:"max_attempts"`    // после стольких временных ошибок entry -> failed
	BackoffCap     time.Duration `mapstructure:"backoff_cap"`     // верхняя граница задержки
	StaleAfter     time.Duration `mapstructure:"stale_after"`     // порог устаревания для статистики
	PollInterval   time.Duration `mapstructure:"poll_interval"`   // период проверки отложенных повторов
	HealthInterval time.Duration `mapstructure:"health_interval"` // период проверки связи
	PullPageSize   int           `mapstructure:"pull_page_size"`
}

// DefaultConfig returns the default sync settings
func DefaultConfig() Config {
	return Config{
		Concurrency:    4,
		MaxAttempts:    3,
		BackoffCap:     5 * time.Minute,
		StaleAfter:     60 * time.Minute,
		PollInterval:   30 * time.Second,
		HealthInterval: 15 * time.Second,
		PullPageSize:   200,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.BackoffCap <= 0 {
		c.BackoffCap = d.BackoffCap
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = d.StaleAfter
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.HealthInterval <= 0 {
		c.HealthInterval = d.HealthInterval
	}
	if c.PullPageSize <= 0 {
		c.PullPageSize = d.PullPageSize
	}
	return c
}

// Manager drains the outbox against the remote API and pulls server
// changes. One manager is constructed per process and shared by reference.
type Manager struct {
	store    storage.LocalStore
	remote   Remote
	tokens   TokenSource
	logger   *slog.Logger
	now      func() time.Time
	progress func(Progress)
	trigger  chan struct{}
	cfg      Config
	drainMu  gosync.Mutex // один drain за раз
	onlineMu gosync.Mutex
	online   bool
}

// Option configures a Manager
type Option func(*Manager)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithProgress registers a callback invoked after each processed entry
func WithProgress(fn func(Progress)) Option {
	return func(m *Manager) { m.progress = fn }
}

// NewManager creates a new sync manager
func NewManager(store storage.LocalStore, remote Remote, tokens TokenSource, cfg Config, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		remote:  remote,
		tokens:  tokens,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		now:     time.Now,
		trigger: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Outcome is the result of sending one queue entry
type Outcome string

// Entry outcomes.
const (
	OutcomeSynced   Outcome = "synced"
	OutcomeConflict Outcome = "conflict"
	OutcomeRetry    Outcome = "retry"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
	OutcomeSkipped  Outcome = "skipped"
)

// Progress is reported after each processed entry
type Progress struct {
	Table    string
	RecordID string
	Outcome  Outcome
	Done     int
	Total    int
}

// DrainResult contains sync operation results
type DrainResult struct {
	Pushed    int // отправлено на сервер
	Synced    int // подтверждено сервером
	Conflicts int // обнаружено конфликтов версий
	Failed    int // помечено failed
	Retried   int // отложено с backoff
	Canceled  int // возвращено в pending из-за отмены
	Blocked   int // не отправлено: backoff, failed или conflict раньше в lane
	Pulled    int // получено изменений с сервера
	Merged    int // применено локально
}

// drainState collects lane results under a mutex
type drainState struct {
	result DrainResult
	total  int
	done   int
	mu     gosync.Mutex
}

// Sync drains the outbox and then pulls server changes
func (m *Manager) Sync(ctx context.Context) (*DrainResult, error) {
	result, err := m.Drain(ctx)
	if err != nil {
		return result, err
	}

	pulled, merged, err := m.Pull(ctx)
	result.Pulled, result.Merged = pulled, merged
	if err != nil {
		return result, err
	}
	return result, nil
}

// Drain sends eligible queue entries to the server.
//
// Entries are grouped into per-record lanes that preserve sequence order.
// Lanes run concurrently up to Config.Concurrency; a lane stops at the first
// entry that is not eligible or does not succeed, so later operations on the
// same record never overtake earlier ones.
func (m *Manager) Drain(ctx context.Context) (*DrainResult, error) {
	m.drainMu.Lock()
	defer m.drainMu.Unlock()

	token, err := m.tokens.AccessToken(ctx)
	if err != nil {
		return &DrainResult{}, fmt.Errorf("failed to get access token: %w", err)
	}

	entries, err := m.store.ListQueue(ctx)
	if err != nil {
		return &DrainResult{}, err
	}

	lanes := buildLanes(entries)
	state := &drainState{total: len(entries)}

	m.logger.Info("Starting drain", "entries", len(entries), "lanes", len(lanes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.cfg.Concurrency)
	for _, lane := range lanes {
		g.Go(func() error {
			return m.runLane(gctx, token, lane, state)
		})
	}
	err = g.Wait()

	result := state.result
	m.logger.Info("Drain finished",
		"pushed", result.Pushed,
		"synced", result.Synced,
		"conflicts", result.Conflicts,
		"failed", result.Failed,
		"retried", result.Retried,
		"canceled", result.Canceled,
		"blocked", result.Blocked)

	if err != nil {
		return &result, fmt.Errorf("drain aborted: %w", err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &result, ctxErr
	}
	return &result, nil
}

func (m *Manager) runLane(ctx context.Context, token string, lane *lane, state *drainState) error {
	for i, entry := range lane.entries {
		if ctx.Err() != nil || !entry.Eligible(m.now()) {
			state.block(len(lane.entries) - i)
			return nil
		}

		outcome, err := m.process(ctx, token, entry)
		if err != nil {
			return err
		}
		m.report(state, entry.Table, entry.RecordID, outcome)

		if outcome != OutcomeSynced && outcome != OutcomeSkipped {
			state.block(len(lane.entries) - i - 1)
			return nil
		}
	}
	return nil
}

func (m *Manager) report(state *drainState, table, recordID string, outcome Outcome) {
	state.mu.Lock()
	switch outcome {
	case OutcomeSynced:
		state.result.Pushed++
		state.result.Synced++
	case OutcomeConflict:
		state.result.Pushed++
		state.result.Conflicts++
	case OutcomeRetry:
		state.result.Pushed++
		state.result.Retried++
	case OutcomeFailed:
		state.result.Pushed++
		state.result.Failed++
	case OutcomeCanceled:
		state.result.Canceled++
	}
	state.done++
	p := Progress{Table: table, RecordID: recordID, Outcome: outcome, Done: state.done, Total: state.total}
	state.mu.Unlock()

	if m.progress != nil {
		m.progress(p)
	}
}

func (s *drainState) block(n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	s.result.Blocked += n
	s.done += n
	s.mu.Unlock()
}

// Trigger requests a sync cycle from Run without blocking
func (m *Manager) Trigger() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

// Online reports the last observed connectivity state
func (m *Manager) Online() bool {
	m.onlineMu.Lock()
	defer m.onlineMu.Unlock()
	return m.online
}

func (m *Manager) setOnline(online bool) (was bool) {
	m.onlineMu.Lock()
	defer m.onlineMu.Unlock()
	was, m.online = m.online, online
	return was
}

// errNothingToSend marks a lane entry that vanished before it was sent
var errNothingToSend = errors.New("nothing to send")

// ErrUnauthorized aborts a drain when the server rejects the access token.
// Queued entries stay pending until the next login.
var ErrUnauthorized = errors.New("server rejected the access token")
