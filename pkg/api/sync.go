package api

import (
	"encoding/json"
	"time"
)

// Record представляет каноническую серверную запись любой сущности
type Record struct {
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	ID        string          `json:"id"`        // серверный UUID
	ClientID  string          `json:"client_id"` // локальный UUID клиента, ключ идемпотентности
	Table     string          `json:"table"`
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Version   int64           `json:"version"` // увеличивается при каждом изменении данных
	Seq       int64           `json:"seq"`     // глобальный номер изменения для pull
	Deleted   bool            `json:"deleted"`
}

// CreateRecordRequest представляет запрос на создание записи
type CreateRecordRequest struct {
	ClientID string          `json:"client_id"`
	Data     json.RawMessage `json:"data"`
}

// UpdateRecordRequest представляет запрос на изменение записи
type UpdateRecordRequest struct {
	Data        json.RawMessage `json:"data"`
	BaseVersion int64           `json:"base_version"` // версия, на которой основано изменение
}

// RecordListResponse представляет страницу записей
type RecordListResponse struct {
	Records []Record `json:"records"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}

// ChangesResponse представляет изменения сервера после курсора
type ChangesResponse struct {
	Records []Record `json:"records"`
	Cursor  int64    `json:"cursor"`
	HasMore bool     `json:"has_more"`
}

// ErrorResponse представляет ответ с ошибкой.
// Current заполняется при конфликте версий (409).
type ErrorResponse struct {
	Current    *Record `json:"current,omitempty"`
	Message    string  `json:"message"`
	StatusCode int     `json:"statusCode"`
}

// HealthResponse представляет ответ health-check
type HealthResponse struct {
	Status string `json:"status"`
	Time   int64  `json:"time"`
}

// IdempotencyKeyHeader carries the client id of a create request
const IdempotencyKeyHeader = "Idempotency-Key"
