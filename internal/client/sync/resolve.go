package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// Resolution is the user's choice for a conflicted record
type Resolution string

// Conflict resolutions.
const (
	KeepLocal  Resolution = "local"
	KeepRemote Resolution = "remote"
)

// ErrNoConflict indicates that the record has no conflicted entry
var ErrNoConflict = errors.New("record has no conflict")

// Conflict describes a conflicted record for display
type Conflict struct {
	Local  *models.Record
	Remote *api.Record
	Entry  *models.QueueEntry
}

// Conflicts lists records waiting for resolution
func (m *Manager) Conflicts(ctx context.Context) ([]*Conflict, error) {
	conflicts := make([]*Conflict, 0)
	err := m.store.View(ctx, func(tx storage.Tx) error {
		entries, err := tx.ListQueue()
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.State != models.EntryConflict {
				continue
			}
			rec, err := tx.GetRecord(e.Table, e.RecordID)
			if err != nil {
				return err
			}
			remote, err := decodeRemote(e)
			if err != nil {
				return err
			}
			conflicts = append(conflicts, &Conflict{Local: rec, Remote: remote, Entry: e})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	return conflicts, nil
}

// Resolve settles a conflict. Conflicts are never resolved automatically.
//
// KeepLocal rebases the queued local payload on the server version and
// requeues it. KeepRemote overwrites the local record with the server copy
// and drops every queued entry of the record.
func (m *Manager) Resolve(ctx context.Context, table, localID string, choice Resolution) error {
	err := m.store.Update(ctx, func(tx storage.Tx) error {
		entries, err := tx.EntriesFor(table, localID)
		if err != nil {
			return err
		}

		var conflicted *models.QueueEntry
		for _, e := range entries {
			if e.State == models.EntryConflict {
				conflicted = e
				break
			}
		}
		if conflicted == nil {
			return ErrNoConflict
		}

		remote, err := decodeRemote(conflicted)
		if err != nil {
			return err
		}
		if remote == nil {
			return fmt.Errorf("conflict for %s/%s carries no server copy", table, localID)
		}

		rec, err := tx.GetRecord(table, localID)
		if err != nil {
			return err
		}

		switch choice {
		case KeepRemote:
			for _, e := range entries {
				if err := tx.DeleteEntry(e.Seq); err != nil {
					return err
				}
			}
			if remote.Deleted {
				return tx.DeleteRecord(table, localID)
			}
			if err := applyServerCopy(rec, remote); err != nil {
				return err
			}
			return tx.PutRecord(rec)

		case KeepLocal:
			if remote.Deleted {
				return fmt.Errorf("%s/%s was deleted on the server, only the remote copy can be kept", table, localID)
			}
			rec.ServerID = remote.ID
			rec.ServerVersion = remote.Version
			rec.SyncStatus = models.StatusPending
			rec.UpdatedAt = m.now()
			if err := tx.PutRecord(rec); err != nil {
				return err
			}

			conflicted.State = models.EntryPending
			conflicted.Attempts = 0
			conflicted.LastError = ""
			conflicted.Remote = nil
			conflicted.NextAttemptAt = time.Time{}
			return tx.PutEntry(conflicted)

		default:
			return fmt.Errorf("unknown resolution %q", choice)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to resolve %s/%s: %w", table, localID, err)
	}

	m.logger.Info("Conflict resolved", "table", table, "record_id", localID, "choice", choice)
	return nil
}

func decodeRemote(e *models.QueueEntry) (*api.Record, error) {
	if len(e.Remote) == 0 {
		return nil, nil
	}
	remote := &api.Record{}
	if err := json.Unmarshal(e.Remote, remote); err != nil {
		return nil, fmt.Errorf("failed to decode server copy: %w", err)
	}
	return remote, nil
}
