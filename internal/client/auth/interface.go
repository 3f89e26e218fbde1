package auth

import (
	"context"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
)

//go:generate moq -out service_mock.go . Service

// Service manages the bearer session used for remote sync.
// Tokens are issued by the identity provider; the CLI only stores them.
type Service interface {
	// Login validates the token shape, extracts user and expiry and stores
	// the session
	Login(ctx context.Context, accessToken string) (*storage.Session, error)

	// Logout removes the stored session
	Logout(ctx context.Context) error

	// Current returns the stored session
	// Returns ErrNotLoggedIn if there is none
	Current(ctx context.Context) (*storage.Session, error)

	// AccessToken returns a non-expired bearer token
	AccessToken(ctx context.Context) (string, error)
}
