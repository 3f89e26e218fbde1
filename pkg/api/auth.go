package api

import "github.com/golang-jwt/jwt/v5"

// TokenClaims are the claims of a bearer access token.
// The server verifies them; the client only reads the user and expiry.
type TokenClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
