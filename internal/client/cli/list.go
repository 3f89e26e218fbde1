package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

type listOptions struct {
	Table string
	Limit int
	Mine  bool
	Watch bool
}

func (c *Cli) runList(ctx context.Context, opts listOptions) error {
	if err := checkTable(opts.Table); err != nil {
		return err
	}

	q := storage.Query{Table: opts.Table, Limit: opts.Limit, Desc: true}
	if opts.Mine {
		session, err := c.session(ctx)
		if err != nil {
			return err
		}
		q.Where = map[string]string{ownerField[opts.Table]: session.UserID}
	}

	if opts.Watch {
		return c.watchList(ctx, q)
	}

	recs, err := c.dataService.List(ctx, q)
	if err != nil {
		return err
	}
	return c.printRecords(ctx, opts.Table, recs)
}

// watchList reprints the list after every local commit while the sync
// manager runs in the background
func (c *Cli) watchList(ctx context.Context, q storage.Query) error {
	g, ctx := errgroup.WithContext(ctx)

	updates := make(chan []*models.Record, 1)
	unsubscribe, err := c.dataService.Watch(q, func(recs []*models.Record) {
		// Оставляем только последний снимок, колбэк не должен блокироваться
		for {
			select {
			case updates <- recs:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", q.Table, err)
	}
	defer unsubscribe()

	g.Go(func() error {
		return c.syncer.Run(ctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case recs := <-updates:
				if err := c.printRecords(ctx, q.Table, recs); err != nil {
					return err
				}
			}
		}
	})
	return g.Wait()
}

func (c *Cli) printRecords(ctx context.Context, table string, recs []*models.Record) error {
	c.io.Printf("=== %s ===\n", table)
	if len(recs) == 0 {
		c.io.Println("No records found.")
		return nil
	}

	states, err := c.recordStates(ctx, recs)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.io, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tVERSION\tSUMMARY")
	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", rec.LocalID, states[rec.Key()], rec.ServerVersion, summarize(rec))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	c.io.Printf("\nTotal: %d record(s)\n", len(recs))
	return nil
}
