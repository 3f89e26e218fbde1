package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/sync"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")
	c.io.Println()

	stats, err := c.syncer.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read outbox: %w", err)
	}
	if queued := stats.Total - stats.Conflict; queued > 0 {
		c.bar = progressbar.NewOptions(queued,
			progressbar.OptionSetWriter(c.io),
			progressbar.OptionSetDescription("Sending changes"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionOnCompletion(func() { c.io.Println() }),
		)
	}

	result, err := c.syncer.Sync(ctx)
	if c.bar != nil {
		_ = c.bar.Finish()
		c.bar = nil
	}
	if errors.Is(err, sync.ErrUnauthorized) {
		return fmt.Errorf("the server rejected the session, changes stay queued. Please login again: %w", err)
	}
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	c.io.Println()
	c.io.Printf("Pushed to server:   %d change(s)\n", result.Pushed)
	c.io.Printf("Confirmed:          %d\n", result.Synced)
	c.io.Printf("Pulled from server: %d change(s)\n", result.Pulled)
	c.io.Printf("Merged locally:     %d\n", result.Merged)
	if result.Retried > 0 {
		c.io.Printf("Will retry:         %d\n", result.Retried)
	}
	if result.Blocked > 0 {
		c.io.Printf("Waiting:            %d\n", result.Blocked)
	}
	if result.Failed > 0 {
		c.io.Printf("⚠️  Failed:          %d (run 'inked queue retry')\n", result.Failed)
	}
	if result.Conflicts > 0 {
		c.io.Printf("⚠️  Conflicts:       %d (run 'inked conflicts')\n", result.Conflicts)
	}
	if result.Failed == 0 && result.Conflicts == 0 {
		c.io.Println()
		c.io.Println("✓ Synchronization completed successfully!")
	}
	return nil
}

// runSyncWatch keeps the background scheduler running until ctx is done
func (c *Cli) runSyncWatch(ctx context.Context) error {
	c.io.Println("Syncing in the background. Press Ctrl+C to stop.")
	if err := c.syncer.Run(ctx); err != nil {
		return fmt.Errorf("sync stopped: %w", err)
	}
	return nil
}
