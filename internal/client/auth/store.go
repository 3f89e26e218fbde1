package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

var (
	// ErrNotLoggedIn indicates that no session is stored
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrTokenExpired indicates that the stored token has expired
	ErrTokenExpired = errors.New("access token expired")
	// ErrInvalidToken indicates a token that is not a JWT with a user id
	ErrInvalidToken = errors.New("invalid access token")
)

// Store implements Service over session storage.
type Store struct {
	storage storage.SessionStorage
	now     func() time.Time
}

// Compile-time check that Store implements Service
var _ Service = (*Store)(nil)

// NewStore creates a new session store
func NewStore(sessions storage.SessionStorage) *Store {
	return &Store{storage: sessions, now: time.Now}
}

// Login parses the token without verifying the signature: the server is the
// one that verifies it. The client only needs the user id and expiry.
func (s *Store) Login(ctx context.Context, accessToken string) (*storage.Session, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	claims := &api.TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing user_id claim", ErrInvalidToken)
	}

	session := &storage.Session{
		UserID:      claims.UserID,
		Username:    claims.Username,
		AccessToken: accessToken,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Unix()
	}
	if session.Expired(s.now()) {
		return nil, ErrTokenExpired
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return session, nil
}

// Logout удаляет сохранённую сессию
func (s *Store) Logout(ctx context.Context) error {
	if err := s.storage.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Current returns the stored session
func (s *Store) Current(ctx context.Context) (*storage.Session, error) {
	session, err := s.storage.GetSession(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// AccessToken implements sync.TokenSource
func (s *Store) AccessToken(ctx context.Context) (string, error) {
	session, err := s.Current(ctx)
	if err != nil {
		return "", err
	}
	if session.Expired(s.now()) {
		return "", ErrTokenExpired
	}
	return session.AccessToken, nil
}
