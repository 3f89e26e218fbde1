package models

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Operation is the remote mutation a queue entry carries.
type Operation string

// Queue operations.
const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// EntryState is the state of a queue entry.
type EntryState string

// Queue entry states. A successfully applied entry is removed.
const (
	EntryPending  EntryState = "pending"
	EntryInFlight EntryState = "in_flight"
	EntryFailed   EntryState = "failed"
	EntryConflict EntryState = "conflict"
)

// Queue priorities. Higher drains first.
const (
	PriorityNormal = 0
	PriorityHigh   = 10
)

// QueueEntry is a durable outbound mutation.
type QueueEntry struct {
	CreatedAt     time.Time       `json:"created_at"`
	LastAttemptAt time.Time       `json:"last_attempt_at,omitempty"`
	NextAttemptAt time.Time       `json:"next_attempt_at,omitempty"`
	Table         string          `json:"table"`
	RecordID      string          `json:"record_id"` // локальный идентификатор записи
	Op            Operation       `json:"op"`
	State         EntryState      `json:"state"`
	LastError     string          `json:"last_error,omitempty"`
	Checksum      string          `json:"checksum"`
	Payload       json.RawMessage `json:"payload"`          // снимок полей на момент постановки в очередь
	Remote        json.RawMessage `json:"remote,omitempty"` // серверная копия при конфликте
	Seq           uint64          `json:"seq"`
	Priority      int             `json:"priority"`
	Attempts      int             `json:"attempts"`
	Sent          bool            `json:"sent,omitempty"` // хотя бы раз уходил на сервер
}

// NewQueueEntry builds a pending entry with its payload checksum.
func NewQueueEntry(table, recordID string, op Operation, payload json.RawMessage, priority int, now time.Time) *QueueEntry {
	return &QueueEntry{
		Table:     table,
		RecordID:  recordID,
		Op:        op,
		Payload:   payload,
		Checksum:  PayloadChecksum(op, payload),
		Priority:  priority,
		State:     EntryPending,
		CreatedAt: now,
	}
}

// Key returns the lane key of the entry.
func (e *QueueEntry) Key() string {
	return RecordKey(e.Table, e.RecordID)
}

// Eligible reports whether the entry can be sent at now.
func (e *QueueEntry) Eligible(now time.Time) bool {
	return e.State == EntryPending && !now.Before(e.NextAttemptAt)
}

// Stale reports whether the entry has waited longer than threshold.
func (e *QueueEntry) Stale(now time.Time, threshold time.Duration) bool {
	return threshold > 0 && now.Sub(e.CreatedAt) > threshold
}

// SetPayload replaces the payload and refreshes the checksum.
func (e *QueueEntry) SetPayload(op Operation, payload json.RawMessage) {
	e.Op = op
	e.Payload = payload
	e.Checksum = PayloadChecksum(op, payload)
}

// PayloadChecksum hashes an operation and its payload.
func PayloadChecksum(op Operation, payload []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(op))
	h.Write([]byte{0})
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// QueueStats summarizes the outbox.
type QueueStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	InFlight int `json:"in_flight"`
	Failed   int `json:"failed"`
	Conflict int `json:"conflict"`
	Stale    int `json:"stale"`
}

// ComputeQueueStats counts entries per state and flags stale ones.
func ComputeQueueStats(entries []*QueueEntry, now time.Time, staleAfter time.Duration) QueueStats {
	stats := QueueStats{Total: len(entries)}
	for _, e := range entries {
		switch e.State {
		case EntryPending:
			stats.Pending++
		case EntryInFlight:
			stats.InFlight++
		case EntryFailed:
			stats.Failed++
		case EntryConflict:
			stats.Conflict++
		}
		if e.Stale(now, staleAfter) {
			stats.Stale++
		}
	}
	return stats
}
