package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	clientapi "github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/api"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// lane is the FIFO of queue entries for one record
type lane struct {
	key     string
	entries []*models.QueueEntry
}

// buildLanes groups entries (already in drain order) by record.
// Lanes keep the order of their first entry; entries inside a lane are
// ordered by sequence.
func buildLanes(entries []*models.QueueEntry) []*lane {
	byKey := make(map[string]*lane)
	lanes := make([]*lane, 0)
	for _, e := range entries {
		l, ok := byKey[e.Key()]
		if !ok {
			l = &lane{key: e.Key()}
			byKey[e.Key()] = l
			lanes = append(lanes, l)
		}
		l.entries = append(l.entries, e)
	}
	for _, l := range lanes {
		sortBySeq(l.entries)
	}
	return lanes
}

func sortBySeq(entries []*models.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Seq < entries[j].Seq
	})
}

// process sends one entry and commits its outcome.
// Storage writes use a context detached from cancellation so that a success
// received before cancellation is still acknowledged.
func (m *Manager) process(ctx context.Context, token string, queued *models.QueueEntry) (Outcome, error) {
	wctx := context.WithoutCancel(ctx)

	entry, rec, err := m.markInFlight(wctx, queued.Seq)
	if errors.Is(err, errNothingToSend) {
		return OutcomeSkipped, nil
	}
	if err != nil {
		return "", err
	}

	logger := m.logger.With("table", entry.Table, "record_id", entry.RecordID, "op", entry.Op, "seq", entry.Seq)

	resp, callErr := m.send(ctx, token, entry, rec)
	if callErr == nil {
		logger.Debug("Entry acknowledged")
		return OutcomeSynced, m.ack(wctx, entry, resp)
	}

	// Отмена drain: entry возвращается в pending без траты попытки
	if ctx.Err() != nil {
		logger.Info("Entry canceled", "error", callErr)
		return OutcomeCanceled, m.revert(wctx, entry)
	}

	switch clientapi.Classify(callErr) {
	case clientapi.KindAuth:
		// Токен отклонён: entry ждёт следующего входа, попытка не засчитывается
		logger.Warn("Access token rejected", "error", callErr)
		if err := m.revert(wctx, entry); err != nil {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, callErr)
	case clientapi.KindConflict:
		logger.Warn("Version conflict", "error", callErr)
		return OutcomeConflict, m.markConflict(wctx, entry, clientapi.ConflictCurrent(callErr), callErr)
	case clientapi.KindPermanent:
		logger.Warn("Entry rejected", "error", callErr)
		return OutcomeFailed, m.fail(wctx, entry, callErr)
	default:
		outcome, err := m.retry(wctx, entry, callErr)
		logger.Warn("Transient sync failure", "error", callErr, "attempts", entry.Attempts, "outcome", outcome)
		return outcome, err
	}
}

// send performs the remote call for the entry's operation.
// The base version is read from the record at send time, so an update queued
// behind a create uses the version the create returned.
func (m *Manager) send(ctx context.Context, token string, entry *models.QueueEntry, rec *models.Record) (*api.Record, error) {
	switch entry.Op {
	case models.OpCreate:
		return m.remote.CreateRecord(ctx, token, entry.Table, api.CreateRecordRequest{
			ClientID: entry.RecordID,
			Data:     entry.Payload,
		})
	case models.OpUpdate:
		if rec.ServerID == "" {
			return nil, &clientapi.Error{StatusCode: 422, Message: "record has no server id"}
		}
		return m.remote.UpdateRecord(ctx, token, entry.Table, rec.ServerID, api.UpdateRecordRequest{
			Data:        entry.Payload,
			BaseVersion: rec.ServerVersion,
		})
	case models.OpDelete:
		if rec.ServerID == "" {
			// Запись не доходила до сервера, удалять там нечего
			return nil, nil
		}
		return m.remote.DeleteRecord(ctx, token, entry.Table, rec.ServerID, rec.ServerVersion)
	default:
		return nil, &clientapi.Error{StatusCode: 400, Message: fmt.Sprintf("unknown operation %q", entry.Op)}
	}
}

func (m *Manager) markInFlight(ctx context.Context, seq uint64) (*models.QueueEntry, *models.Record, error) {
	var (
		entry *models.QueueEntry
		rec   *models.Record
	)
	err := m.store.Update(ctx, func(tx storage.Tx) error {
		var err error
		entry, err = tx.GetEntry(seq)
		if errors.Is(err, storage.ErrEntryNotFound) {
			return errNothingToSend
		}
		if err != nil {
			return err
		}
		if !entry.Eligible(m.now()) {
			return errNothingToSend
		}

		rec, err = tx.GetRecord(entry.Table, entry.RecordID)
		if errors.Is(err, storage.ErrRecordNotFound) {
			// Сирота: запись удалена локально, entry больше не нужен
			m.logger.Warn("Dropping queue entry without record", "table", entry.Table, "record_id", entry.RecordID)
			if err := tx.DeleteEntry(seq); err != nil {
				return err
			}
			return nil
		}
		if err != nil {
			return err
		}

		entry.State = models.EntryInFlight
		entry.Sent = true
		entry.LastAttemptAt = m.now()
		return tx.PutEntry(entry)
	})
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, errNothingToSend
	}
	return entry, rec, nil
}

// ack removes the entry and reconciles the record with the server copy
func (m *Manager) ack(ctx context.Context, entry *models.QueueEntry, resp *api.Record) error {
	return m.store.Update(ctx, func(tx storage.Tx) error {
		if err := tx.DeleteEntry(entry.Seq); err != nil {
			return err
		}

		rec, err := tx.GetRecord(entry.Table, entry.RecordID)
		if errors.Is(err, storage.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		remaining, err := tx.EntriesFor(entry.Table, entry.RecordID)
		if err != nil {
			return err
		}

		if resp != nil {
			rec.ServerID = resp.ID
			rec.ServerVersion = resp.Version
		}

		if entry.Op == models.OpDelete {
			if len(remaining) == 0 {
				return tx.DeleteRecord(entry.Table, entry.RecordID)
			}
			return tx.PutRecord(rec)
		}

		// Более новые локальные изменения ещё в очереди: оставляем pending
		if len(remaining) > 0 || rec.SyncStatus == models.StatusConflict {
			return tx.PutRecord(rec)
		}

		if err := applyServerCopy(rec, resp); err != nil {
			return err
		}
		return tx.PutRecord(rec)
	})
}

// applyServerCopy makes the record equal to the server copy and marks it synced
func applyServerCopy(rec *models.Record, resp *api.Record) error {
	entity, err := models.DecodeEntity(rec.Table, resp.Data)
	if err != nil {
		return err
	}
	if err := rec.SetEntity(entity); err != nil {
		return err
	}
	rec.ServerID = resp.ID
	rec.ServerVersion = resp.Version
	rec.Deleted = resp.Deleted
	rec.SyncStatus = models.StatusSynced
	rec.UpdatedAt = resp.UpdatedAt
	return nil
}

func (m *Manager) markConflict(ctx context.Context, entry *models.QueueEntry, current *api.Record, cause error) error {
	return m.store.Update(ctx, func(tx storage.Tx) error {
		entry.State = models.EntryConflict
		entry.LastError = cause.Error()
		if current != nil {
			remote, err := json.Marshal(current)
			if err != nil {
				return fmt.Errorf("failed to marshal server copy: %w", err)
			}
			entry.Remote = remote
		}
		if err := tx.PutEntry(entry); err != nil {
			return err
		}

		rec, err := tx.GetRecord(entry.Table, entry.RecordID)
		if err != nil {
			return err
		}
		rec.SyncStatus = models.StatusConflict
		return tx.PutRecord(rec)
	})
}

func (m *Manager) retry(ctx context.Context, entry *models.QueueEntry, cause error) (Outcome, error) {
	outcome := OutcomeRetry
	err := m.store.Update(ctx, func(tx storage.Tx) error {
		entry.Attempts++
		entry.LastError = cause.Error()
		if entry.Attempts >= m.cfg.MaxAttempts {
			entry.State = models.EntryFailed
			outcome = OutcomeFailed
		} else {
			entry.State = models.EntryPending
			entry.NextAttemptAt = entry.LastAttemptAt.Add(Backoff(entry.Attempts, m.cfg.BackoffCap))
		}
		return tx.PutEntry(entry)
	})
	return outcome, err
}

func (m *Manager) fail(ctx context.Context, entry *models.QueueEntry, cause error) error {
	return m.store.Update(ctx, func(tx storage.Tx) error {
		entry.State = models.EntryFailed
		entry.LastError = cause.Error()
		return tx.PutEntry(entry)
	})
}

func (m *Manager) revert(ctx context.Context, entry *models.QueueEntry) error {
	return m.store.Update(ctx, func(tx storage.Tx) error {
		entry.State = models.EntryPending
		return tx.PutEntry(entry)
	})
}
