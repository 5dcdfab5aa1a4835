package eventworker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wallfeed/wall-service/internal/domain/models"
	"github.com/wallfeed/wall-service/internal/lib/logger/sl"
	"github.com/wallfeed/wall-service/internal/lib/mapper"
	"github.com/wallfeed/wall-service/internal/storage"
)

type PageProvider interface {
	EventPage(ctx context.Context, limit int) ([]models.Event, error)
}

type Deleter interface {
	DeleteEvents(ctx context.Context, ids []string) error
}

type Reserver interface {
	Reserve(ctx context.Context, ids []string) error
}

type Sender interface {
	Send(ctx context.Context, page []models.Event) error
}

// Worker relays outbox events to the notifier topic. Every tick it takes a
// page of pending events, reserves them, sends them and deletes them.
type Worker struct {
	log          *slog.Logger
	pageSize     int
	pageProvider PageProvider
	deleter      Deleter
	reserver     Reserver
	sender       Sender
	stop         chan struct{}
	interval     time.Duration
	timeout      time.Duration
}

func New(
	log *slog.Logger,
	pageSize int,
	pageProvider PageProvider,
	reserver Reserver,
	deleter Deleter,
	sender Sender,
	interval time.Duration,
	timeout time.Duration,
) *Worker {
	return &Worker{
		log:          log,
		pageSize:     pageSize,
		pageProvider: pageProvider,
		deleter:      deleter,
		reserver:     reserver,
		sender:       sender,
		interval:     interval,
		timeout:      timeout,
		stop:         make(chan struct{}),
	}
}

func (w *Worker) Start() {
	const op = "eventworker.Start"
	log := w.log.With(slog.String("op", op))

	ticker := time.NewTicker(w.interval)

	go func() {
		defer ticker.Stop()
		defer func() {
			w.stop <- struct{}{}
		}()

		for {
			select {
			case <-w.stop:
				log.Info("stop signal is received")
				return
			case <-ticker.C:
			}

			err := w.handleEvents()
			if err != nil {
				log.Error("failed to handle events", sl.Err(err))
			}
		}
	}()
}

func (w *Worker) Stop() {
	const op = "eventworker.Stop"
	w.log.Info("starting to stop worker", slog.String("op", op))

	w.stop <- struct{}{}
	<-w.stop

	close(w.stop)
}

func (w *Worker) handleEvents() error {
	const op = "eventworker.handleEvents"
	log := w.log.With(slog.String("op", op))

	ctx, cncl := context.WithTimeout(context.Background(), w.timeout)
	defer cncl()

	page, err := w.pageProvider.EventPage(ctx, w.pageSize)
	if err != nil {
		log.Error("failed to get event page", sl.Err(err))
		return fail(op, err)
	}

	ids := mapper.EventsToIds(page)

	err = w.reserver.Reserve(ctx, ids)
	if err != nil {
		if errors.Is(err, storage.ErrNoEvents) {
			return nil
		}

		log.Info("failed to reserve events", sl.Err(err))
		return fail(op, err)
	}

	err = w.sender.Send(ctx, page)
	if err != nil {
		log.Error("failed to send events", sl.Err(err))
		return fail(op, err)
	}

	err = w.deleter.DeleteEvents(ctx, ids)
	if err != nil {
		log.Error("failed to delete events", sl.Err(err))
		return fail(op, err)
	}

	log.Info("relayed event page", slog.Int("count", len(page)))
	return nil
}

func fail(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
