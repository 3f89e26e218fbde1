package storage

import "context"

// MetadataStorage defines interface for storing client sync metadata
type MetadataStorage interface {
	// SavePullCursor saves the server change sequence reached by the last pull
	SavePullCursor(ctx context.Context, cursor int64) error

	// GetPullCursor retrieves the last pull cursor
	// Returns 0 if no pull has been performed yet
	GetPullCursor(ctx context.Context) (int64, error)
}
