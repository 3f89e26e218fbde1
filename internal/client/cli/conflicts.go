package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/sync"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

func (c *Cli) runConflicts(ctx context.Context) error {
	conflicts, err := c.syncer.Conflicts(ctx)
	if err != nil {
		return err
	}

	c.io.Println("=== Conflicts ===")
	if len(conflicts) == 0 {
		c.io.Println("No conflicts.")
		return nil
	}

	for _, cf := range conflicts {
		c.io.Println()
		c.io.Printf("%s/%s (%s)\n", cf.Entry.Table, cf.Entry.RecordID, cf.Entry.Op)
		c.io.Printf("  local:  %s\n", summarize(cf.Local))
		if cf.Remote != nil {
			remote := &models.Record{Table: cf.Entry.Table, LocalID: cf.Entry.RecordID, Fields: cf.Remote.Data}
			state := "live"
			if cf.Remote.Deleted {
				state = "deleted"
			}
			c.io.Printf("  server: %s (version %d, %s)\n", summarize(remote), cf.Remote.Version, state)
		}
	}
	c.io.Println()
	c.io.Println("Run 'inked resolve <table> <id> --keep local|remote' to settle each one.")
	return nil
}

func (c *Cli) runResolve(ctx context.Context, table, id, keep string) error {
	var choice sync.Resolution
	switch keep {
	case "local":
		choice = sync.KeepLocal
	case "remote", "server":
		choice = sync.KeepRemote
	default:
		return fmt.Errorf("unknown resolution %q. Use: local or remote", keep)
	}

	err := c.syncer.Resolve(ctx, table, id, choice)
	if errors.Is(err, sync.ErrNoConflict) {
		return fmt.Errorf("%s/%s has no conflict", table, id)
	}
	if err != nil {
		return err
	}

	if choice == sync.KeepLocal {
		c.io.Printf("✓ Kept local changes of %s/%s. They are sent on the next sync.\n", table, id)
	} else {
		c.io.Printf("✓ Replaced %s/%s with the server copy.\n", table, id)
	}
	return nil
}
