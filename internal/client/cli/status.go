package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/auth"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()

	session, err := c.authService.Current(ctx)
	switch {
	case errors.Is(err, auth.ErrNotLoggedIn):
		c.io.Println("Session: Not logged in")
		c.io.Println("Run 'inked login' to authenticate.")
	case err != nil:
		return fmt.Errorf("failed to get session: %w", err)
	default:
		c.io.Printf("Session: %s (%s)\n", session.Username, session.UserID)
		if session.ExpiresAt > 0 {
			expiresAt := time.Unix(session.ExpiresAt, 0)
			if remaining := expiresAt.Sub(c.now()); remaining > 0 {
				c.io.Printf("Token expires in: %s\n", remaining.Round(time.Second))
			} else {
				c.io.Println("⚠️  Token has expired. Please login again.")
			}
		}
	}

	stats, err := c.syncer.Stats(ctx)
	if err != nil {
		// Статус сессии уже выведен, очередь не критична
		c.io.Printf("\nWarning: Failed to read outbox: %v\n", err)
		return nil
	}

	c.io.Println()
	if stats.Total == 0 {
		c.io.Println("✓ All changes synchronized with server")
		return nil
	}
	c.io.Printf("Outbox: %d change(s) waiting\n", stats.Total)
	c.io.Printf("  pending: %d, in flight: %d, failed: %d, conflict: %d\n",
		stats.Pending, stats.InFlight, stats.Failed, stats.Conflict)
	if stats.Stale > 0 {
		c.io.Printf("⚠️  %d change(s) have been waiting too long. Check your connection.\n", stats.Stale)
	}
	if stats.Conflict > 0 {
		c.io.Println("Run 'inked conflicts' to review conflicting records.")
	}
	if stats.Failed > 0 {
		c.io.Println("Run 'inked queue retry' to requeue failed changes.")
	}
	return nil
}
