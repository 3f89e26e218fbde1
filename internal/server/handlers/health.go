package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// Pinger reports whether a dependency answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger *slog.Logger
	db     Pinger
	now    func() time.Time
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, db Pinger) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		db:     db,
		now:    time.Now,
	}
}

// Health обрабатывает GET /api/v1/health.
// Возвращает 503, если база данных недоступна.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := api.HealthResponse{Status: "ok", Time: h.now().Unix()}
	status := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.ErrorContext(r.Context(), "database ping failed", slog.Any("error", err))
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		}
	}

	sendJSON(w, h.logger, resp, status)
}
