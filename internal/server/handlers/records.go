package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/validation"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

const (
	defaultRecordLimit  = 50
	maxRecordLimit      = 500
	defaultChangesLimit = 200
	maxChangesLimit     = 1000
	maxRecordBody       = 1 << 20
)

// RecordsHandler serves the synced tables and the change feed
type RecordsHandler struct {
	logger  *slog.Logger
	storage storage.RecordStorage
	now     func() time.Time
}

// NewRecordsHandler creates a new records handler
func NewRecordsHandler(logger *slog.Logger, storage storage.RecordStorage) *RecordsHandler {
	return &RecordsHandler{
		logger:  logger,
		storage: storage,
		now:     time.Now,
	}
}

// Create обрабатывает POST /api/v1/records/{table}.
// Повторный запрос с тем же client_id возвращает существующую запись (200).
func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, table, ok := h.prepare(w, r)
	if !ok {
		return
	}

	var req api.CreateRecordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBody)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ClientID == "" {
		sendError(w, h.logger, "client_id is required", http.StatusBadRequest)
		return
	}
	if key := r.Header.Get(api.IdempotencyKeyHeader); key != "" && key != req.ClientID {
		sendError(w, h.logger, "idempotency key does not match client_id", http.StatusBadRequest)
		return
	}

	entity, ok := h.decodeEntity(w, r, table, req.Data, userID)
	if !ok {
		return
	}
	if entity.RecordID() != req.ClientID {
		sendError(w, h.logger, "data id does not match client_id", http.StatusBadRequest)
		return
	}

	rec, created, err := h.storage.CreateRecord(ctx, &api.Record{
		Table:    table,
		ClientID: req.ClientID,
		UserID:   userID,
		Data:     req.Data,
	})
	if err != nil {
		h.internalError(w, r, "failed to create record", err)
		return
	}
	if !created && rec.UserID != userID {
		h.logger.WarnContext(ctx, "client id owned by another user",
			slog.String("table", table), slog.String("client_id", req.ClientID))
		sendError(w, h.logger, "forbidden", http.StatusForbidden)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.logger.InfoContext(ctx, "record created",
			slog.String("table", table), slog.String("id", rec.ID), slog.String("user_id", userID))
	}
	sendJSON(w, h.logger, rec, status)
}

// Update обрабатывает PUT /api/v1/records/{table}/{id}
func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, table, ok := h.prepare(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	var req api.UpdateRecordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBody)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update request", slog.Any("error", err))
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}

	current, ok := h.owned(w, r, table, id, userID)
	if !ok {
		return
	}
	entity, ok := h.decodeEntity(w, r, table, req.Data, userID)
	if !ok {
		return
	}
	if entity.RecordID() != current.ClientID {
		sendError(w, h.logger, "data id does not match record", http.StatusBadRequest)
		return
	}

	rec, err := h.storage.UpdateRecord(ctx, table, id, req.Data, req.BaseVersion)
	if err != nil {
		h.storageError(w, r, err)
		return
	}
	sendJSON(w, h.logger, rec, http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/records/{table}/{id}?base_version=N
func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, table, ok := h.prepare(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	baseVersion, err := strconv.ParseInt(r.URL.Query().Get("base_version"), 10, 64)
	if err != nil {
		sendError(w, h.logger, "invalid base_version parameter", http.StatusBadRequest)
		return
	}
	if _, ok := h.owned(w, r, table, id, userID); !ok {
		return
	}

	rec, err := h.storage.DeleteRecord(r.Context(), table, id, baseVersion)
	if err != nil {
		h.storageError(w, r, err)
		return
	}
	sendJSON(w, h.logger, rec, http.StatusOK)
}

// List обрабатывает GET /api/v1/records/{table}?limit&offset.
// Возвращает живые записи текущего пользователя.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, table, ok := h.prepare(w, r)
	if !ok {
		return
	}
	limit, offset, ok := pageParams(r, defaultRecordLimit, maxRecordLimit)
	if !ok {
		sendError(w, h.logger, "invalid pagination parameters", http.StatusBadRequest)
		return
	}

	records, err := h.storage.ListRecords(r.Context(), table, userID, limit, offset)
	if err != nil {
		h.internalError(w, r, "failed to list records", err)
		return
	}
	sendJSON(w, h.logger, api.RecordListResponse{Records: records, Limit: limit, Offset: offset}, http.StatusOK)
}

// Changes обрабатывает GET /api/v1/changes?since=N&limit=M
func (h *RecordsHandler) Changes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return
	}

	var since int64
	if v := r.URL.Query().Get("since"); v != "" {
		var err error
		since, err = strconv.ParseInt(v, 10, 64)
		if err != nil || since < 0 {
			h.logger.WarnContext(ctx, "invalid since parameter", slog.String("since", v))
			sendError(w, h.logger, "invalid since parameter", http.StatusBadRequest)
			return
		}
	}
	limit, _, ok := pageParams(r, defaultChangesLimit, maxChangesLimit)
	if !ok {
		sendError(w, h.logger, "invalid limit parameter", http.StatusBadRequest)
		return
	}

	// Запрашиваем на одну запись больше, чтобы узнать has_more
	records, err := h.storage.Changes(ctx, userID, since, limit+1)
	if err != nil {
		h.internalError(w, r, "failed to query changes", err)
		return
	}

	resp := api.ChangesResponse{Cursor: since}
	if len(records) > limit {
		records = records[:limit]
		resp.HasMore = true
	}
	if len(records) > 0 {
		resp.Cursor = records[len(records)-1].Seq
	}
	resp.Records = records

	h.logger.DebugContext(ctx, "changes served",
		slog.String("user_id", userID), slog.Int64("since", since), slog.Int("count", len(records)))
	sendJSON(w, h.logger, resp, http.StatusOK)
}

// prepare извлекает пользователя и проверяет таблицу
func (h *RecordsHandler) prepare(w http.ResponseWriter, r *http.Request) (userID, table string, ok bool) {
	userID, ok = GetUserID(r.Context())
	if !ok {
		h.logger.ErrorContext(r.Context(), "user id not found in context")
		sendError(w, h.logger, "unauthorized", http.StatusUnauthorized)
		return "", "", false
	}
	table = mux.Vars(r)["table"]
	if !models.IsSyncedTable(table) {
		sendError(w, h.logger, "unknown table", http.StatusNotFound)
		return "", "", false
	}
	return userID, table, true
}

// decodeEntity проверяет данные записи и владельца
func (h *RecordsHandler) decodeEntity(w http.ResponseWriter, r *http.Request, table string, data json.RawMessage, userID string) (models.Entity, bool) {
	entity, err := models.DecodeEntity(table, data)
	if err != nil {
		sendError(w, h.logger, "invalid record data", http.StatusBadRequest)
		return nil, false
	}
	if err := validation.ValidateEntity(entity, h.now()); err != nil {
		h.logger.WarnContext(r.Context(), "record rejected", slog.String("table", table), slog.Any("error", err))
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if owner := OwnerOf(entity); owner != userID {
		h.logger.WarnContext(r.Context(), "record owner mismatch",
			slog.String("table", table), slog.String("owner", owner), slog.String("user_id", userID))
		sendError(w, h.logger, "forbidden", http.StatusForbidden)
		return nil, false
	}
	return entity, true
}

// owned загружает запись и проверяет, что она принадлежит пользователю
func (h *RecordsHandler) owned(w http.ResponseWriter, r *http.Request, table, id, userID string) (*api.Record, bool) {
	rec, err := h.storage.GetRecord(r.Context(), table, id)
	if err != nil {
		h.storageError(w, r, err)
		return nil, false
	}
	if rec.UserID != userID {
		sendError(w, h.logger, "forbidden", http.StatusForbidden)
		return nil, false
	}
	return rec, true
}

func (h *RecordsHandler) storageError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *storage.ConflictError
	switch {
	case errors.As(err, &conflict):
		h.logger.InfoContext(r.Context(), "version conflict",
			slog.String("id", conflict.Current.ID),
			slog.Int64("base_version", conflict.BaseVersion),
			slog.Int64("current_version", conflict.Current.Version))
		sendJSON(w, h.logger, api.ErrorResponse{
			StatusCode: http.StatusConflict,
			Message:    "version conflict",
			Current:    conflict.Current,
		}, http.StatusConflict)
	case errors.Is(err, storage.ErrRecordNotFound):
		sendError(w, h.logger, "record not found", http.StatusNotFound)
	default:
		h.internalError(w, r, "storage failure", err)
	}
}

func (h *RecordsHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg, slog.Any("error", err))
	sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
}

// OwnerOf returns the account id that owns an entity
func OwnerOf(e models.Entity) string {
	switch v := e.(type) {
	case *models.User:
		return v.UserID
	case *models.CollectionItem:
		return v.UserID
	case *models.Rating:
		return v.UserID
	case *models.Post:
		return v.UserID
	case *models.Comment:
		return v.UserID
	case *models.Follow:
		return v.FollowerID
	default:
		return ""
	}
}
