package eventworker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wallfeed/wall-service/internal/domain/models"
	"github.com/wallfeed/wall-service/internal/storage"
)

type fakeOutbox struct {
	mu       sync.Mutex
	pending  []models.Event
	reserved []string
	deleted  []string
	sent     chan []models.Event
}

func newFakeOutbox(pending []models.Event) *fakeOutbox {
	return &fakeOutbox{
		pending: pending,
		sent:    make(chan []models.Event, 8),
	}
}

func (f *fakeOutbox) EventPage(_ context.Context, limit int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}

	return f.pending, nil
}

func (f *fakeOutbox) Reserve(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(ids) == 0 {
		return storage.ErrNoEvents
	}

	f.reserved = append(f.reserved, ids...)
	return nil
}

func (f *fakeOutbox) Send(_ context.Context, page []models.Event) error {
	f.sent <- page
	return nil
}

func (f *fakeOutbox) DeleteEvents(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, ids...)
	f.pending = nil
	return nil
}

func newWorker(outbox *fakeOutbox) *Worker {
	return New(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		10,
		outbox,
		outbox,
		outbox,
		outbox,
		10*time.Millisecond,
		time.Second,
	)
}

func TestWorkerRelaysPendingEvents(t *testing.T) {
	outbox := newFakeOutbox([]models.Event{
		{Id: "e1", Payload: `{"type":"created"}`},
		{Id: "e2", Payload: `{"type":"created"}`},
	})

	w := newWorker(outbox)
	w.Start()
	defer w.Stop()

	select {
	case page := <-outbox.sent:
		require.Len(t, page, 2)
		require.Equal(t, "e1", page[0].Id)
	case <-time.After(time.Second):
		t.Fatal("worker did not relay events in time")
	}

	require.Eventually(t, func() bool {
		outbox.mu.Lock()
		defer outbox.mu.Unlock()
		return len(outbox.deleted) == 2
	}, time.Second, 10*time.Millisecond)

	outbox.mu.Lock()
	defer outbox.mu.Unlock()
	require.ElementsMatch(t, []string{"e1", "e2"}, outbox.reserved)
	require.ElementsMatch(t, []string{"e1", "e2"}, outbox.deleted)
}

func TestWorkerSkipsEmptyOutbox(t *testing.T) {
	outbox := newFakeOutbox(nil)

	w := newWorker(outbox)
	w.Start()

	select {
	case <-outbox.sent:
		t.Fatal("nothing should be sent for an empty outbox")
	case <-time.After(100 * time.Millisecond):
	}

	w.Stop()

	outbox.mu.Lock()
	defer outbox.mu.Unlock()
	require.Empty(t, outbox.reserved)
	require.Empty(t, outbox.deleted)
}
