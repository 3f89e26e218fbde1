package sync

import (
	"context"
	"time"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// Run drives sync cycles until ctx is done: on Trigger, on the
// offline->online transition seen by the connectivity monitor, and on a
// periodic tick when due retries are waiting.
func (m *Manager) Run(ctx context.Context) error {
	poll := time.NewTicker(m.cfg.PollInterval)
	defer poll.Stop()
	health := time.NewTicker(m.cfg.HealthInterval)
	defer health.Stop()

	m.checkConnectivity(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.trigger:
			m.cycle(ctx, "manual")
		case <-health.C:
			m.checkConnectivity(ctx)
		case <-poll.C:
			if m.Online() && m.hasDue(ctx) {
				m.cycle(ctx, "retry")
			}
		}
	}
}

// checkConnectivity polls the health endpoint and starts a cycle when the
// server becomes reachable again
func (m *Manager) checkConnectivity(ctx context.Context) {
	online := m.remote.Health(ctx) == nil
	was := m.setOnline(online)

	switch {
	case online && !was:
		m.logger.Info("Connectivity restored")
		m.cycle(ctx, "reconnect")
	case !online && was:
		m.logger.Warn("Connectivity lost")
	}
}

func (m *Manager) cycle(ctx context.Context, reason string) {
	m.logger.Debug("Sync cycle", "reason", reason)
	if _, err := m.Sync(ctx); err != nil && ctx.Err() == nil {
		m.logger.Error("Sync cycle failed", "reason", reason, "error", err)
	}
}

// hasDue reports whether any pending entry is eligible now
func (m *Manager) hasDue(ctx context.Context) bool {
	entries, err := m.store.ListQueue(ctx)
	if err != nil {
		m.logger.Error("Failed to read queue", "error", err)
		return false
	}
	now := m.now()
	for _, e := range entries {
		if e.Eligible(now) {
			return true
		}
	}
	return false
}

// Stats summarizes the outbox, flagging entries older than StaleAfter
func (m *Manager) Stats(ctx context.Context) (models.QueueStats, error) {
	entries, err := m.store.ListQueue(ctx)
	if err != nil {
		return models.QueueStats{}, err
	}
	return models.ComputeQueueStats(entries, m.now(), m.cfg.StaleAfter), nil
}
