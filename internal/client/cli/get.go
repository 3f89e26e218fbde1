package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

func (c *Cli) runShow(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}

	rec, err := c.dataService.Get(ctx, table, id)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return fmt.Errorf("record not found: %s/%s", table, id)
	}
	if err != nil {
		return err
	}

	states, err := c.recordStates(ctx, []*models.Record{rec})
	if err != nil {
		return err
	}

	c.io.Printf("=== %s/%s ===\n", table, id)
	c.io.Println()
	c.io.Printf("State:     %s\n", states[rec.Key()])
	if rec.ServerID != "" {
		c.io.Printf("Server ID: %s (version %d)\n", rec.ServerID, rec.ServerVersion)
	}
	c.io.Printf("Updated:   %s\n", rec.UpdatedAt.Format("2006-01-02 15:04:05"))
	c.io.Println()

	var out bytes.Buffer
	if err := json.Indent(&out, rec.Fields, "", "  "); err != nil {
		return fmt.Errorf("failed to format fields: %w", err)
	}
	c.io.Println(out.String())
	return nil
}
