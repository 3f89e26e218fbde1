package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

const recordColumns = `id, entity, client_id, user_id, data, version, seq, deleted, created_at, updated_at`

// queryer is satisfied by *sql.DB and *sql.Tx
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

// CreateRecord inserts a record keyed by (table, client id)
func (s *Storage) CreateRecord(ctx context.Context, rec *api.Record) (*api.Record, bool, error) {
	var (
		stored  *api.Record
		created bool
	)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		existing, err := getByClientID(ctx, tx, rec.Table, rec.ClientID)
		if err == nil {
			stored = existing
			return nil
		}
		if !errors.Is(err, storage.ErrRecordNotFound) {
			return err
		}

		data := rec.Data
		if rec.Table == models.TablePosts {
			if data, err = withCommentCount(ctx, tx, rec.ClientID, data); err != nil {
				return err
			}
		}

		seq, err := nextSeq(ctx, tx)
		if err != nil {
			return err
		}
		now := s.now()
		stored = &api.Record{
			ID:        rec.ID,
			ClientID:  rec.ClientID,
			Table:     rec.Table,
			UserID:    rec.UserID,
			Data:      data,
			Version:   1,
			Seq:       seq,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if stored.ID == "" {
			stored.ID = uuid.New().String()
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (`+recordColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			stored.ID, stored.Table, stored.ClientID, stored.UserID, string(stored.Data),
			stored.Version, stored.Seq, toMicros(stored.CreatedAt), toMicros(stored.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record: %w", err)
		}
		created = true
		return s.afterWrite(ctx, tx, nil, stored)
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

// GetRecord retrieves a record by server id, including deleted ones
func (s *Storage) GetRecord(ctx context.Context, table, id string) (*api.Record, error) {
	return getByID(ctx, s.db, table, id)
}

// UpdateRecord replaces the data of a record at baseVersion
func (s *Storage) UpdateRecord(ctx context.Context, table, id string, data json.RawMessage, baseVersion int64) (*api.Record, error) {
	var updated *api.Record
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getByID(ctx, tx, table, id)
		if err != nil {
			return err
		}
		if current.Deleted || current.Version != baseVersion {
			return &storage.ConflictError{Current: current, BaseVersion: baseVersion}
		}

		if table == models.TablePosts {
			// comment_count ведёт сервер
			if data, err = withCommentCount(ctx, tx, current.ClientID, data); err != nil {
				return err
			}
		}

		seq, err := nextSeq(ctx, tx)
		if err != nil {
			return err
		}
		next := *current
		next.Data = data
		next.Version++
		next.Seq = seq
		next.UpdatedAt = s.now()

		_, err = tx.ExecContext(ctx, `
			UPDATE records SET data = ?, version = ?, seq = ?, updated_at = ?
			WHERE id = ?`,
			string(next.Data), next.Version, next.Seq, toMicros(next.UpdatedAt), next.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update record: %w", err)
		}
		updated = &next
		return s.afterWrite(ctx, tx, current, updated)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRecord soft-deletes a record at baseVersion
func (s *Storage) DeleteRecord(ctx context.Context, table, id string, baseVersion int64) (*api.Record, error) {
	var deleted *api.Record
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getByID(ctx, tx, table, id)
		if err != nil {
			return err
		}
		if current.Deleted {
			deleted = current
			return nil
		}
		if current.Version != baseVersion {
			return &storage.ConflictError{Current: current, BaseVersion: baseVersion}
		}

		seq, err := nextSeq(ctx, tx)
		if err != nil {
			return err
		}
		next := *current
		next.Deleted = true
		next.Version++
		next.Seq = seq
		next.UpdatedAt = s.now()

		_, err = tx.ExecContext(ctx, `
			UPDATE records SET deleted = 1, version = ?, seq = ?, updated_at = ?
			WHERE id = ?`,
			next.Version, next.Seq, toMicros(next.UpdatedAt), next.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		deleted = &next
		return s.afterWrite(ctx, tx, current, deleted)
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ListRecords returns live records of a user
func (s *Storage) ListRecords(ctx context.Context, table, userID string, limit, offset int) ([]api.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM records
		WHERE entity = ? AND user_id = ? AND deleted = 0
		ORDER BY created_at, seq
		LIMIT ? OFFSET ?`,
		table, userID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return collectRecords(rows)
}

// Changes returns records visible to userID changed after since.
// Collection items are private to their owner; everything else is public.
func (s *Storage) Changes(ctx context.Context, userID string, since int64, limit int) ([]api.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM records
		WHERE seq > ? AND (user_id = ? OR entity <> ?)
		ORDER BY seq
		LIMIT ?`,
		since, userID, models.TableCollectionItems, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	return collectRecords(rows)
}

// afterWrite maintains values derived from other records:
// post comment counters and product rating aggregates
func (s *Storage) afterWrite(ctx context.Context, tx *sql.Tx, before, after *api.Record) error {
	switch after.Table {
	case models.TableComments:
		posts := make(map[string]struct{}, 2)
		for _, rec := range []*api.Record{before, after} {
			if rec == nil {
				continue
			}
			var c models.Comment
			if err := json.Unmarshal(rec.Data, &c); err != nil {
				return fmt.Errorf("failed to decode comment: %w", err)
			}
			posts[c.PostID] = struct{}{}
		}
		for postID := range posts {
			if err := s.recountComments(ctx, tx, postID); err != nil {
				return err
			}
		}

	case models.TableRatings:
		products := make(map[string]struct{}, 2)
		for _, rec := range []*api.Record{before, after} {
			if rec == nil {
				continue
			}
			var r models.Rating
			if err := json.Unmarshal(rec.Data, &r); err != nil {
				return fmt.Errorf("failed to decode rating: %w", err)
			}
			products[r.ProductID] = struct{}{}
		}
		for productID := range products {
			if err := s.recomputeRating(ctx, tx, productID); err != nil {
				return err
			}
		}
	}
	return nil
}

// recountComments stores the number of live comments on a post. The post
// gets a new sequence so that clients pull the counter; its version is kept
// so that pending local edits don't conflict.
func (s *Storage) recountComments(ctx context.Context, tx *sql.Tx, postClientID string) error {
	seq, err := nextSeq(ctx, tx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE records SET
			data = json_set(data, '$.comment_count', (
				SELECT COUNT(*) FROM records c
				WHERE c.entity = ? AND c.deleted = 0 AND json_extract(c.data, '$.post_id') = records.client_id
			)),
			seq = ?, updated_at = ?
		WHERE entity = ? AND client_id = ? AND deleted = 0`,
		models.TableComments, seq, toMicros(s.now()), models.TablePosts, postClientID,
	)
	if err != nil {
		return fmt.Errorf("failed to update comment count: %w", err)
	}
	return nil
}

// withCommentCount overwrites comment_count in post data with the live count
func withCommentCount(ctx context.Context, q queryer, postClientID string, data json.RawMessage) (json.RawMessage, error) {
	var out string
	err := q.QueryRowContext(ctx, `
		SELECT json_set(?, '$.comment_count', (
			SELECT COUNT(*) FROM records
			WHERE entity = ? AND deleted = 0 AND json_extract(data, '$.post_id') = ?
		))`,
		string(data), models.TableComments, postClientID,
	).Scan(&out)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return json.RawMessage(out), nil
}

func (s *Storage) recomputeRating(ctx context.Context, tx *sql.Tx, productID string) error {
	if productID == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE products SET
			average_rating = COALESCE((
				SELECT AVG(json_extract(data, '$.score')) FROM records
				WHERE entity = ? AND deleted = 0 AND json_extract(data, '$.product_id') = products.id
			), 0),
			rating_count = (
				SELECT COUNT(*) FROM records
				WHERE entity = ? AND deleted = 0 AND json_extract(data, '$.product_id') = products.id
			),
			updated_at = ?
		WHERE id = ?`,
		models.TableRatings, models.TableRatings, toMicros(s.now()), productID,
	)
	if err != nil {
		return fmt.Errorf("failed to recompute rating of %s: %w", productID, err)
	}
	return nil
}

func nextSeq(ctx context.Context, q queryer) (int64, error) {
	var seq int64
	if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM records`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate sequence: %w", err)
	}
	return seq, nil
}

func getByID(ctx context.Context, q queryer, table, id string) (*api.Record, error) {
	row := q.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE entity = ? AND id = ?`, table, id)
	return scanRecord(row)
}

func getByClientID(ctx context.Context, q queryer, table, clientID string) (*api.Record, error) {
	row := q.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE entity = ? AND client_id = ?`, table, clientID)
	return scanRecord(row)
}

func scanRecord(row scanner) (*api.Record, error) {
	var (
		rec                  api.Record
		data                 string
		deleted              int
		createdAt, updatedAt int64
	)
	err := row.Scan(&rec.ID, &rec.Table, &rec.ClientID, &rec.UserID, &data,
		&rec.Version, &rec.Seq, &deleted, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	rec.Data = json.RawMessage(data)
	rec.Deleted = deleted != 0
	rec.CreatedAt = fromMicros(createdAt)
	rec.UpdatedAt = fromMicros(updatedAt)
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]api.Record, error) {
	defer rows.Close()

	records := make([]api.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}
	return records, nil
}
