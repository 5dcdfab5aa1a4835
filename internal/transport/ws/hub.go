package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/wallfeed/wall-service/internal/domain/models"
	"github.com/wallfeed/wall-service/internal/lib/logger/sl"
)

// Hub fans inserted posts out to every subscribed viewer. All subscription
// state is owned by the run loop, so no lock is needed.
type Hub struct {
	log        *slog.Logger
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.Post
	done       chan struct{}
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.Post, 64),
		done:       make(chan struct{}),
	}
}

// Start runs the fanout loop until the context is canceled
func (h *Hub) Start(ctx context.Context) {
	const op = "ws.Start"
	log := h.log.With(slog.String("op", op))

	go func() {
		defer close(h.done)

		for {
			select {
			case <-ctx.Done():
				log.Info("context is canceled")
				h.closeAll()
				return

			case client := <-h.register:
				h.clients[client] = struct{}{}
				log.Info("viewer subscribed", slog.Int("viewers", len(h.clients)))

			case client := <-h.unregister:
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					close(client.send)
				}
				log.Info("viewer unsubscribed", slog.Int("viewers", len(h.clients)))

			case post := <-h.broadcast:
				frame, err := json.Marshal(post)
				if err != nil {
					log.Error("failed to marshal post", sl.Err(err))
					continue
				}

				for client := range h.clients {
					select {
					case client.send <- frame:
					default:
						// the viewer is not keeping up, drop it
						delete(h.clients, client)
						close(client.send)
						log.Warn("evicted slow viewer")
					}
				}
			}
		}
	}()
}

// Broadcast hands one inserted post to every subscribed viewer
func (h *Hub) Broadcast(post models.Post) {
	select {
	case h.broadcast <- post:
	case <-h.done:
	}
}

func (h *Hub) Stop() {
	const op = "ws.Stop"
	h.log.Info("stopping hub", slog.String("op", op))

	<-h.done
}

func (h *Hub) closeAll() {
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}
