package models

import (
	"time"
)

// Post is one wall entry. AuthorId is empty for anonymous posts,
// ImageUrl is empty when no image was attached.
type Post struct {
	Id        int64     `json:"id"`
	AuthorId  string    `json:"author_id,omitempty"`
	Content   string    `json:"content"`
	ImageUrl  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
