package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"
)

func (c *Cli) runQueueList(ctx context.Context) error {
	entries, err := c.store.ListQueue(ctx)
	if err != nil {
		return fmt.Errorf("failed to read outbox: %w", err)
	}
	stats, err := c.syncer.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read outbox: %w", err)
	}

	c.io.Println("=== Outbox ===")
	if len(entries) == 0 {
		c.io.Println("Outbox is empty.")
		return nil
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tOP\tRECORD\tSTATE\tATTEMPTS\tAGE\tLAST ERROR")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s/%s\t%s\t%d\t%s\t%s\n",
			e.Seq, e.Op, e.Table, e.RecordID, e.State, e.Attempts,
			c.now().Sub(e.CreatedAt).Round(time.Second), truncate(e.LastError, 40))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	c.io.Println()
	c.io.Printf("Total: %d, pending: %d, in flight: %d, failed: %d, conflict: %d, stale: %d\n",
		stats.Total, stats.Pending, stats.InFlight, stats.Failed, stats.Conflict, stats.Stale)
	return nil
}

func (c *Cli) runQueueRetry(ctx context.Context) error {
	n, err := c.store.RetryFailed(ctx)
	if err != nil {
		return fmt.Errorf("failed to requeue entries: %w", err)
	}
	if n == 0 {
		c.io.Println("No failed changes.")
		return nil
	}
	c.io.Printf("✓ Requeued %d change(s). Run 'inked sync' to send them.\n", n)
	return nil
}
