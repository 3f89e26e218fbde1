package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	if err := c.authService.Logout(ctx); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	c.io.Println("✓ Logout successful!")

	// Очередь не очищается: изменения уйдут после следующего входа
	stats, err := c.syncer.Stats(ctx)
	if err != nil || stats.Total == 0 {
		return nil
	}
	c.io.Printf("%d local change(s) were not sent yet. They will be sent after the next login.\n", stats.Total)
	return nil
}
