package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/wallfeed/wall-service/internal/domain/models"
	"github.com/wallfeed/wall-service/internal/storage"
	"github.com/wallfeed/wall-service/internal/storage/events"
)

type Storage struct {
	db *sql.DB
}

func New(
	user string,
	password string,
	host string,
	port int,
	dbname string,
	timeout int,
) (*Storage, error) {
	const op = "postgres.New"
	conn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=%d&sslmode=disable",
		user, password, host, port, dbname, timeout,
	)

	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, fail(op, err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fail(op, err)
	}

	return &Storage{db: db}, nil
}

// SavePost inserts the post together with its outbox event in one
// transaction, so a saved post always has a pending notifier event.
// Returned post carries the server-assigned id and timestamp.
func (s *Storage) SavePost(
	ctx context.Context,
	authorId string,
	content string,
	imageUrl string,
) (models.Post, error) {
	const op = "postgres.SavePost"
	const insertPost = `
		INSERT INTO posts(author_id, content, image_url)
		VALUES($1, $2, $3)
		RETURNING id, created_at`
	const insertEvent = `
		INSERT INTO post_events(id, payload)
		VALUES($1, $2)`

	var err error
	if err = ctx.Err(); err != nil {
		return models.Post{}, fail(op, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Post{}, fail(op, err)
	}
	defer tx.Rollback()

	post := models.Post{
		AuthorId: authorId,
		Content:  content,
		ImageUrl: imageUrl,
	}

	row := tx.QueryRowContext(ctx, insertPost,
		nullable(authorId), content, nullable(imageUrl),
	)
	if err = row.Scan(&post.Id, &post.CreatedAt); err != nil {
		return models.Post{}, fail(op, err)
	}

	payload, err := events.CollectPayload(post)
	if err != nil {
		return models.Post{}, fail(op, err)
	}

	_, err = tx.ExecContext(ctx, insertEvent, events.CollectEventId(), payload)
	if err != nil {
		return models.Post{}, fail(op, err)
	}

	if err = tx.Commit(); err != nil {
		return models.Post{}, fail(op, err)
	}

	return post, nil
}

// Recent returns at most limit posts ordered by creation time descending
func (s *Storage) Recent(ctx context.Context, limit int) ([]models.Post, error) {
	const op = "postgres.Recent"
	const selectRecent = `
		SELECT id, author_id, content, image_url, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1`

	if err := ctx.Err(); err != nil {
		return nil, fail(op, err)
	}

	rows, err := s.db.QueryContext(ctx, selectRecent, limit)
	if err != nil {
		return nil, fail(op, err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0, limit)
	for rows.Next() {
		var (
			post     models.Post
			authorId sql.NullString
			imageUrl sql.NullString
		)

		err = rows.Scan(&post.Id, &authorId, &post.Content, &imageUrl, &post.CreatedAt)
		if err != nil {
			return nil, fail(op, err)
		}

		post.AuthorId = authorId.String
		post.ImageUrl = imageUrl.String
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		return nil, fail(op, err)
	}

	return posts, nil
}

// EventPage returns at most limit not yet reserved outbox events,
// oldest first
func (s *Storage) EventPage(ctx context.Context, limit int) ([]models.Event, error) {
	const op = "postgres.EventPage"
	const selectEvents = `
		SELECT id, payload
		FROM post_events
		WHERE NOT reserved
		ORDER BY created_at
		LIMIT $1`

	if err := ctx.Err(); err != nil {
		return nil, fail(op, err)
	}

	rows, err := s.db.QueryContext(ctx, selectEvents, limit)
	if err != nil {
		return nil, fail(op, err)
	}
	defer rows.Close()

	page := make([]models.Event, 0, limit)
	for rows.Next() {
		var event models.Event

		if err = rows.Scan(&event.Id, &event.Payload); err != nil {
			return nil, fail(op, err)
		}

		page = append(page, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fail(op, err)
	}

	return page, nil
}

// Reserve marks events as taken by the relay worker.
// Returns [storage.ErrNoEvents] if ids is empty
func (s *Storage) Reserve(ctx context.Context, ids []string) error {
	const op = "postgres.Reserve"
	const reserveEvents = `
		UPDATE post_events
		SET reserved = TRUE
		WHERE id = ANY($1)`

	if len(ids) == 0 {
		return fail(op, storage.ErrNoEvents)
	}

	_, err := s.db.ExecContext(ctx, reserveEvents, pq.Array(ids))
	if err != nil {
		return fail(op, err)
	}

	return nil
}

// DeleteEvents removes relayed events from the outbox
func (s *Storage) DeleteEvents(ctx context.Context, ids []string) error {
	const op = "postgres.DeleteEvents"
	const deleteEvents = `
		DELETE FROM post_events
		WHERE id = ANY($1)`

	if len(ids) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx, deleteEvents, pq.Array(ids))
	if err != nil {
		return fail(op, err)
	}

	return nil
}

func (s *Storage) Stop() {
	_ = s.db.Close()
}

// nullable maps an empty string to SQL NULL
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// fail assembles a new error with define structure
// Error message has pattern 'op':'err'
func fail(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
