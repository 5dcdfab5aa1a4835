package wall

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wallfeed/wall-service/internal/domain/models"
	errs "github.com/wallfeed/wall-service/internal/lib/errors"
	"github.com/wallfeed/wall-service/internal/lib/logger/sl"
	"github.com/wallfeed/wall-service/internal/service/wall/interfaces/cache"
	"github.com/wallfeed/wall-service/internal/service/wall/interfaces/repository"
	"github.com/wallfeed/wall-service/internal/storage"
	"github.com/wallfeed/wall-service/internal/transport/validate"
)

// RecentWindow is the size of the initial feed window
const RecentWindow = 50

type WallService struct {
	log     *slog.Logger
	svr     repository.Saver
	rcnts   repository.RecentsProvider
	cache   cache.FeedCache
	timeout time.Duration
}

func New(
	log *slog.Logger,
	svr repository.Saver,
	rcnts repository.RecentsProvider,
	cache cache.FeedCache,
	timeout time.Duration,
) *WallService {
	return &WallService{
		log:     log,
		svr:     svr,
		rcnts:   rcnts,
		cache:   cache,
		timeout: timeout,
	}
}

// Create creates new post and returns it with the server-assigned id and
// timestamp. Content must hold 1 to 280 characters; an image url is
// optional; posts are written with no author.
// Only [ErrInternal] or [ErrInvalidContent] can be returned
func (w *WallService) Create(
	ctx context.Context,
	content string,
	imageUrl string,
) (models.Post, error) {
	const op = "wall-service.Create"
	log := w.log.With(slog.String("op", op))
	log.Info(
		"starting to create new post",
		slog.Int("content-len", len(content)),
		slog.Bool("has-image", imageUrl != ""),
	)
	defer log.Info("creating post ended")

	var err error
	sendErr := func(err error) (models.Post, error) {
		return models.Post{}, errs.Fail(op, err)
	}

	if err = ctx.Err(); err != nil {
		log.Error("failed to create - context is canceled", sl.Err(err))
		return sendErr(ErrInternal)
	}

	if err = validate.Content(content); err != nil {
		log.Warn("rejected post content", sl.Err(err))
		return sendErr(ErrInvalidContent)
	}

	ctx, cncl := context.WithTimeout(ctx, w.timeout)
	defer cncl()

	post, err := w.svr.SavePost(ctx, "", content, imageUrl)
	if err != nil {
		log.Error("failed to save post", sl.Err(err))
		return sendErr(ErrInternal)
	}

	if err = w.cache.Invalidate(ctx); err != nil {
		// the cache expires on its own ttl, a failed drop only delays freshness
		log.Warn("failed to invalidate feed cache", sl.Err(err))
	}

	log.Info("post is saved", slog.Int64("post-id", post.Id))
	return post, nil
}

// Recent returns the most recent feed window, newest first. Reads go
// through the cache; a miss falls back to the repository and refills it.
// Only [ErrInternal] can be returned as an error
func (w *WallService) Recent(ctx context.Context) ([]models.Post, error) {
	const op = "wall-service.Recent"
	log := w.log.With(slog.String("op", op))

	var err error
	sendErr := func(err error) ([]models.Post, error) {
		return nil, errs.Fail(op, err)
	}

	if err = ctx.Err(); err != nil {
		log.Error("failed to read feed - context is canceled", sl.Err(err))
		return sendErr(ErrInternal)
	}
	ctx, cncl := context.WithTimeout(ctx, w.timeout)
	defer cncl()

	posts, err := w.cache.Recent(ctx)
	if err == nil {
		log.Info("feed window served from cache", slog.Int("count", len(posts)))
		return posts, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		log.Warn("feed cache read failed", sl.Err(err))
	}

	posts, err = w.rcnts.Recent(ctx, RecentWindow)
	if err != nil {
		log.Error("failed to read recent posts", sl.Err(err))
		return sendErr(ErrInternal)
	}

	if err = w.cache.SetRecent(ctx, posts); err != nil {
		log.Warn("failed to refill feed cache", sl.Err(err))
	}

	log.Info("feed window served from storage", slog.Int("count", len(posts)))
	return posts, nil
}
