package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// Pull fetches server changes since the stored cursor and merges them into
// local records that are synced or absent. Pending and conflicted records
// are left alone; their queue entries decide their fate.
func (m *Manager) Pull(ctx context.Context) (pulled, merged int, err error) {
	token, err := m.tokens.AccessToken(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get access token: %w", err)
	}

	cursor, err := m.store.GetPullCursor(ctx)
	if err != nil {
		m.logger.Warn("Failed to get pull cursor, using 0", "error", err)
		cursor = 0
	}

	for {
		resp, err := m.remote.Changes(ctx, token, cursor, m.cfg.PullPageSize)
		if err != nil {
			return pulled, merged, fmt.Errorf("pull request failed: %w", err)
		}
		pulled += len(resp.Records)

		var n int
		err = m.store.Update(ctx, func(tx storage.Tx) error {
			n = 0
			for i := range resp.Records {
				applied, err := mergeRemote(tx, &resp.Records[i])
				if err != nil {
					return err
				}
				if applied {
					n++
				}
			}
			return nil
		})
		if err != nil {
			return pulled, merged, fmt.Errorf("failed to merge server changes: %w", err)
		}
		merged += n

		if resp.Cursor > cursor {
			cursor = resp.Cursor
			if err := m.store.SavePullCursor(ctx, cursor); err != nil {
				return pulled, merged, err
			}
		}
		if !resp.HasMore || len(resp.Records) == 0 {
			break
		}
	}

	m.logger.Info("Pull finished", "pulled", pulled, "merged", merged, "cursor", cursor)
	return pulled, merged, nil
}

func mergeRemote(tx storage.Tx, remote *api.Record) (bool, error) {
	if !models.IsSyncedTable(remote.Table) {
		return false, nil
	}

	local, err := tx.GetRecord(remote.Table, remote.ClientID)
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		if remote.Deleted {
			return false, nil
		}
		rec := &models.Record{
			Table:     remote.Table,
			LocalID:   remote.ClientID,
			CreatedAt: remote.CreatedAt,
		}
		if err := applyServerCopy(rec, remote); err != nil {
			return false, err
		}
		return true, tx.PutRecord(rec)
	case err != nil:
		return false, err
	}

	if local.SyncStatus != models.StatusSynced || remote.Version < local.ServerVersion {
		return false, nil
	}
	entries, err := tx.EntriesFor(remote.Table, remote.ClientID)
	if err != nil {
		return false, err
	}
	if len(entries) > 0 {
		return false, nil
	}

	if remote.Deleted {
		return true, tx.DeleteRecord(remote.Table, remote.ClientID)
	}
	if err := applyServerCopy(local, remote); err != nil {
		return false, err
	}
	return true, tx.PutRecord(local)
}
