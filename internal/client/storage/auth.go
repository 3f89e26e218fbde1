package storage

import (
	"context"
	"time"
)

//go:generate moq -out auth_mock.go . SessionStorage

// SessionStorage defines interface for storing the bearer session on client.
// Tokens are issued by the external auth provider; the client only keeps them.
type SessionStorage interface {
	// SaveSession stores the current session, replacing any previous one
	SaveSession(ctx context.Context, session *Session) error

	// GetSession retrieves the stored session
	// Returns ErrSessionNotFound if nobody is logged in
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session (logout)
	DeleteSession(ctx context.Context) error
}

// Session represents authentication information in storage
type Session struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // unix seconds, 0 если срок не указан
}

// Expired reports whether the token has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt > 0 && now.Unix() >= s.ExpiresAt
}
