package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// sendJSON отправляет JSON ответ
func sendJSON(w http.ResponseWriter, logger *slog.Logger, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет JSON ответ с ошибкой
func sendError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int) {
	sendJSON(w, logger, api.ErrorResponse{StatusCode: statusCode, Message: message}, statusCode)
}

// SendError writes the error envelope without a handler at hand.
// Used by middleware.
func SendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.ErrorResponse{StatusCode: statusCode, Message: message})
}

// pageParams разбирает limit/offset; пустые значения дают значения по умолчанию
func pageParams(r *http.Request, defaultLimit, maxLimit int) (limit, offset int, ok bool) {
	limit, offset = defaultLimit, 0
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		if n > 0 {
			limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, 0, false
		}
		offset = n
	}
	return min(limit, maxLimit), offset, true
}
