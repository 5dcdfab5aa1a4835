package cache

import (
	"context"

	"github.com/wallfeed/wall-service/internal/domain/models"
)

type FeedCache interface {
	// Recent returns the cached feed window.
	// Returns [storage.ErrNotFound] wrapped on cache miss
	Recent(ctx context.Context) ([]models.Post, error)

	// SetRecent stores the feed window
	SetRecent(ctx context.Context, posts []models.Post) error

	// Invalidate drops the cached window
	Invalidate(ctx context.Context) error
}
