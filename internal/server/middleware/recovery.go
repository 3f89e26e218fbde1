package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/handlers"
)

// Recover turns a handler panic into a 500 with the API error envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.ErrorContext(r.Context(), "Panic recovered",
					"panic", v,
					"request_id", RequestID(r.Context()),
					"method", r.Method,
					"route", routeTemplate(r),
					"stack", string(debug.Stack()),
				)
				// Детали паники клиенту не раскрываем
				handlers.SendError(w, "internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
