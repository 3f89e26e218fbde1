package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
)

func (c *Cli) runDelete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}

	err := c.dataService.Delete(ctx, table, id)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return fmt.Errorf("record not found: %s/%s", table, id)
	}
	if err != nil {
		return err
	}

	c.io.Printf("✓ Deleted %s/%s\n", table, id)
	c.io.Println("The deletion is sent to the server on the next sync.")
	return nil
}
