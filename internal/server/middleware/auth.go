package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/handlers"
)

// Messages returned with 401
const (
	msgMissingToken = "missing token"
	msgTokenFormat  = "invalid token format"
	msgTokenExpired = "token expired"
	msgInvalidToken = "invalid token"
)

// Authenticate validates the bearer token and puts the caller into the
// request context
func Authenticate(logger *slog.Logger, cfg handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			raw, msg := bearerToken(r)
			if msg != "" {
				logger.WarnContext(ctx, "Rejected request", "reason", msg, "request_id", RequestID(ctx), "route", routeTemplate(r))
				handlers.SendError(w, msg, http.StatusUnauthorized)
				return
			}

			claims, err := handlers.ValidateAccessToken(cfg, raw)
			if err != nil {
				msg := msgInvalidToken
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = msgTokenExpired
				}
				logger.WarnContext(ctx, "Rejected request", "reason", msg, "request_id", RequestID(ctx), "error", err)
				handlers.SendError(w, msg, http.StatusUnauthorized)
				return
			}

			if info := requestInfoFrom(ctx); info != nil {
				info.userID = claims.UserID
			}
			next.ServeHTTP(w, r.WithContext(handlers.WithUser(ctx, claims.UserID, claims.Username)))
		})
	}
}

// bearerToken extracts the token or returns the rejection message
func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", msgMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", msgTokenFormat
	}
	return token, ""
}
