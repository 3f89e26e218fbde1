package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncStatus is the reconciliation status of a local record.
type SyncStatus string

// Record sync statuses.
const (
	StatusSynced   SyncStatus = "synced"
	StatusPending  SyncStatus = "pending"
	StatusConflict SyncStatus = "conflict"
)

// Record is the local representation of any synchronized entity.
// A synced record always has a ServerID and Fields equal to the last-known
// server values.
type Record struct {
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Index         map[string]string `json:"index,omitempty"` // значения индексируемых полей
	Table         string            `json:"table"`
	LocalID       string            `json:"local_id"`            // UUID, сгенерированный на клиенте
	ServerID      string            `json:"server_id,omitempty"` // пусто до первой успешной синхронизации
	SyncStatus    SyncStatus        `json:"sync_status"`
	Fields        json.RawMessage   `json:"fields"`
	ServerVersion int64             `json:"server_version"` // последняя известная версия на сервере
	Deleted       bool              `json:"deleted"`        // tombstone до подтверждения удаления
}

// NewRecord builds a pending record from an entity.
func NewRecord(e Entity, now time.Time) (*Record, error) {
	fields, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s fields: %w", e.TableName(), err)
	}

	return &Record{
		Table:      e.TableName(),
		LocalID:    e.RecordID(),
		Fields:     fields,
		Index:      compactIndex(e.IndexFields()),
		SyncStatus: StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SetEntity replaces the record fields and index with the entity values.
func (r *Record) SetEntity(e Entity) error {
	fields, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal %s fields: %w", e.TableName(), err)
	}
	r.Fields = fields
	r.Index = compactIndex(e.IndexFields())
	return nil
}

// Decode unmarshals record fields into v.
func (r *Record) Decode(v any) error {
	if err := json.Unmarshal(r.Fields, v); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", r.Table, r.LocalID, err)
	}
	return nil
}

// Key returns the lane key of the record.
func (r *Record) Key() string {
	return RecordKey(r.Table, r.LocalID)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.Fields = append(json.RawMessage(nil), r.Fields...)
	if r.Index != nil {
		c.Index = make(map[string]string, len(r.Index))
		for k, v := range r.Index {
			c.Index[k] = v
		}
	}
	return &c
}

// RecordKey joins a table and a local id.
func RecordKey(table, localID string) string {
	return table + "/" + localID
}

// compactIndex drops empty values so that they are not indexed.
func compactIndex(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// RecordState is the user-facing lifecycle state of a record.
type RecordState string

// Record lifecycle states.
const (
	StateLocalOnly RecordState = "local-only"
	StateSyncing   RecordState = "syncing"
	StateSynced    RecordState = "synced"
	StateConflict  RecordState = "conflict"
	StateFailed    RecordState = "failed"
)

// StateOf derives the lifecycle state of a record from its status and the
// queue entries still referencing it.
func StateOf(r *Record, entries []*QueueEntry) RecordState {
	if r.SyncStatus == StatusConflict {
		return StateConflict
	}
	for _, e := range entries {
		switch e.State {
		case EntryFailed:
			return StateFailed
		case EntryConflict:
			return StateConflict
		case EntryInFlight:
			return StateSyncing
		}
	}
	if r.SyncStatus == StatusSynced {
		return StateSynced
	}
	if r.ServerID == "" {
		return StateLocalOnly
	}
	return StateSyncing
}
