package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

func (c *Cli) runLogin(ctx context.Context, tokenFile string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	var token string
	if tokenFile != "" {
		content, err := os.ReadFile(tokenFile)
		if err != nil {
			return fmt.Errorf("failed to read token file: %w", err)
		}
		token = strings.TrimSpace(string(content))
	} else {
		var err error
		token, err = c.io.ReadSecret("Access token: ")
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
	}

	session, err := c.authService.Login(ctx, token)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	c.io.Println("✓ Login successful!")
	c.io.Printf("User: %s (%s)\n", session.Username, session.UserID)
	if session.ExpiresAt > 0 {
		c.io.Printf("Token expires: %s\n", time.Unix(session.ExpiresAt, 0).UTC().Format(time.RFC3339))
	}
	return nil
}
