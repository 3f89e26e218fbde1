package data

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/client/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/validation"
)

// ErrDuplicate indicates that an equivalent record already exists locally
var ErrDuplicate = errors.New("record already exists")

// Service handles client-side domain writes and reads.
// Every write and the queue entry that carries it to the server commit in
// one storage transaction.
type Service struct {
	store  storage.RecordStorage
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides local id generation
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService creates a new data service
func NewService(store storage.RecordStorage, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProfile stores the local user profile
func (s *Service) CreateProfile(ctx context.Context, user *models.User) (*models.Record, error) {
	if user.ID == "" {
		user.ID = s.newID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	return s.create(ctx, user, models.PriorityNormal)
}

// UpdateProfile rewrites the local user profile
func (s *Service) UpdateProfile(ctx context.Context, user *models.User) (*models.Record, error) {
	return s.Update(ctx, user)
}

// CreatePost stores a new feed post
func (s *Service) CreatePost(ctx context.Context, post *models.Post) (*models.Record, error) {
	if post.ID == "" {
		post.ID = s.newID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.now()
	}
	return s.create(ctx, post, models.PriorityNormal)
}

// AddComment stores a comment and bumps the local comment counter of its
// post in the same transaction. The counter is maintained by the server, so
// the post itself is not queued.
func (s *Service) AddComment(ctx context.Context, comment *models.Comment) (*models.Record, error) {
	if comment.ID == "" {
		comment.ID = s.newID()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = s.now()
	}
	if err := validation.ValidateComment(comment); err != nil {
		return nil, err
	}

	var rec *models.Record
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		if err := s.adjustCommentCount(tx, comment.PostID, 1); err != nil {
			return err
		}
		var err error
		rec, err = s.insert(tx, comment, models.PriorityNormal)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	s.logger.Debug("Comment added", "id", comment.ID, "post_id", comment.PostID)
	return rec, nil
}

// Rate stores a rating. A second rating of the same product by the same
// user updates the existing one.
func (s *Service) Rate(ctx context.Context, rating *models.Rating) (*models.Record, error) {
	existing, err := s.store.Query(ctx, storage.Query{
		Table: models.TableRatings,
		Where: map[string]string{"user_id": rating.UserID, "product_id": rating.ProductID},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up rating: %w", err)
	}
	if len(existing) > 0 {
		var prev models.Rating
		if err := existing[0].Decode(&prev); err != nil {
			return nil, err
		}
		rating.ID = prev.ID
		rating.CreatedAt = prev.CreatedAt
		return s.Update(ctx, rating)
	}

	if rating.ID == "" {
		rating.ID = s.newID()
	}
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = s.now()
	}
	return s.create(ctx, rating, models.PriorityNormal)
}

// AddToCollection stores a humidor or cellar entry
func (s *Service) AddToCollection(ctx context.Context, item *models.CollectionItem) (*models.Record, error) {
	if item.ID == "" {
		item.ID = s.newID()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now()
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	return s.create(ctx, item, models.PriorityNormal)
}

// Follow creates a follow edge unless it already exists
func (s *Service) Follow(ctx context.Context, followerID, followeeID string) (*models.Record, error) {
	existing, err := s.store.Query(ctx, storage.Query{
		Table: models.TableFollows,
		Where: map[string]string{"follower_id": followerID, "followee_id": followeeID},
		Limit: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up follow: %w", err)
	}
	if len(existing) > 0 {
		return existing[0], fmt.Errorf("%w: %s already follows %s", ErrDuplicate, followerID, followeeID)
	}

	return s.create(ctx, &models.Follow{
		ID:         s.newID(),
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  s.now(),
	}, models.PriorityNormal)
}

// Update rewrites an existing record with the entity values and queues
// the update
func (s *Service) Update(ctx context.Context, e models.Entity) (*models.Record, error) {
	if err := validation.ValidateEntity(e, s.now()); err != nil {
		return nil, err
	}

	var rec *models.Record
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		var err error
		rec, err = tx.GetRecord(e.TableName(), e.RecordID())
		if err != nil {
			return err
		}
		if rec.Deleted {
			return fmt.Errorf("%s/%s: %w", rec.Table, rec.LocalID, storage.ErrRecordNotFound)
		}
		if err := rec.SetEntity(e); err != nil {
			return err
		}
		return s.stage(tx, rec, models.OpUpdate, models.PriorityNormal)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s/%s: %w", e.TableName(), e.RecordID(), err)
	}
	return rec, nil
}

// Delete tombstones a record and queues its delete. Deleting a record whose
// create never reached the server removes it outright.
func (s *Service) Delete(ctx context.Context, table, localID string) error {
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		rec, err := tx.GetRecord(table, localID)
		if err != nil {
			return err
		}
		if rec.Deleted {
			return nil
		}

		if table == models.TableComments {
			var c models.Comment
			if err := rec.Decode(&c); err != nil {
				return err
			}
			if err := s.adjustCommentCount(tx, c.PostID, -1); err != nil {
				return err
			}
		}

		entry, err := tx.Enqueue(models.NewQueueEntry(table, localID, models.OpDelete, rec.Fields, deletePriority(table), s.now()))
		if err != nil {
			return err
		}
		if entry == nil {
			// Create ещё не отправлялся: удалять на сервере нечего
			return tx.DeleteRecord(table, localID)
		}

		rec.Deleted = true
		rec.SyncStatus = models.StatusPending
		rec.UpdatedAt = s.now()
		return tx.PutRecord(rec)
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", table, localID, err)
	}

	s.logger.Debug("Record deleted", "table", table, "id", localID)
	return nil
}

// Get reads one live record
func (s *Service) Get(ctx context.Context, table, localID string) (*models.Record, error) {
	rec, err := s.store.GetRecord(ctx, table, localID)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s/%s: %w", table, localID, err)
	}
	if rec.Deleted {
		return nil, fmt.Errorf("%s/%s: %w", table, localID, storage.ErrRecordNotFound)
	}
	return rec, nil
}

// List returns records matching q
func (s *Service) List(ctx context.Context, q storage.Query) ([]*models.Record, error) {
	recs, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", q.Table, err)
	}
	return recs, nil
}

// Watch registers a live query over the local store
func (s *Service) Watch(q storage.Query, fn func([]*models.Record)) (func(), error) {
	return s.store.Subscribe(q, fn)
}

// create validates and inserts a new record with its create entry
func (s *Service) create(ctx context.Context, e models.Entity, priority int) (*models.Record, error) {
	if err := validation.ValidateEntity(e, s.now()); err != nil {
		return nil, err
	}

	var rec *models.Record
	err := s.store.Update(ctx, func(tx storage.Tx) error {
		var err error
		rec, err = s.insert(tx, e, priority)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", e.TableName(), err)
	}

	s.logger.Debug("Record created", "table", rec.Table, "id", rec.LocalID)
	return rec, nil
}

func (s *Service) insert(tx storage.Tx, e models.Entity, priority int) (*models.Record, error) {
	_, err := tx.GetRecord(e.TableName(), e.RecordID())
	if err == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrDuplicate, e.TableName(), e.RecordID())
	}
	if !errors.Is(err, storage.ErrRecordNotFound) {
		return nil, err
	}

	rec, err := models.NewRecord(e, s.now())
	if err != nil {
		return nil, err
	}
	return rec, s.stage(tx, rec, models.OpCreate, priority)
}

// stage marks the record pending, writes it and queues op
func (s *Service) stage(tx storage.Tx, rec *models.Record, op models.Operation, priority int) error {
	rec.SyncStatus = models.StatusPending
	rec.UpdatedAt = s.now()
	if err := tx.PutRecord(rec); err != nil {
		return err
	}
	if !models.IsSyncedTable(rec.Table) {
		return nil
	}
	_, err := tx.Enqueue(models.NewQueueEntry(rec.Table, rec.LocalID, op, rec.Fields, priority, s.now()))
	return err
}

// adjustCommentCount changes the local comment counter of a post.
// Missing posts are ignored: the comment may target a post not pulled yet.
// The post keeps its sync status: comment_count belongs to the server, which
// republishes the post in the change feed when the count moves, and the next
// pull overwrites this local value with the server's.
func (s *Service) adjustCommentCount(tx storage.Tx, postID string, delta int) error {
	rec, err := tx.GetRecord(models.TablePosts, postID)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var post models.Post
	if err := rec.Decode(&post); err != nil {
		return err
	}
	post.CommentCount += delta
	if post.CommentCount < 0 {
		post.CommentCount = 0
	}
	if err := rec.SetEntity(&post); err != nil {
		return err
	}
	return tx.PutRecord(rec)
}

func deletePriority(table string) int {
	switch table {
	case models.TablePosts, models.TableComments:
		return models.PriorityHigh
	default:
		return models.PriorityNormal
	}
}
