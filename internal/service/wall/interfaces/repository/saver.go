package repository

import (
	"context"

	"github.com/wallfeed/wall-service/internal/domain/models"
)

type Saver interface {
	// SavePost saves the record together with its notifier event.
	// Returned post carries the server-assigned id and timestamp
	SavePost(
		ctx context.Context,
		authorId string,
		content string,
		imageUrl string,
	) (models.Post, error)
}
