package repository

import (
	"context"

	"github.com/wallfeed/wall-service/internal/domain/models"
)

type RecentsProvider interface {
	// Recent returns at most limit posts, newest first
	Recent(ctx context.Context, limit int) ([]models.Post, error)
}
