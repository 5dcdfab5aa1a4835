package kafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/wallfeed/wall-service/internal/domain/models"
	"github.com/wallfeed/wall-service/internal/lib/logger/sl"
	"github.com/wallfeed/wall-service/internal/storage/events"
)

// Handler receives every post observed on the notifier topic
type Handler func(post models.Post)

// Consumer reads the notifier topic and hands every inserted post to the
// handler. It is the receiving half of the change notifier; the sending
// half is the outbox worker with [Producer].
type Consumer struct {
	log    *slog.Logger
	group  sarama.ConsumerGroup
	topic  string
	handle Handler
	done   chan struct{}
}

func NewConsumer(
	log *slog.Logger,
	addrs []string,
	topic string,
	groupId string,
	handle Handler,
) (*Consumer, error) {
	const op = "kafka.NewConsumer"

	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	cfg.Consumer.Return.Errors = false

	group, err := sarama.NewConsumerGroup(addrs, groupId, cfg)
	if err != nil {
		return nil, fail(op, err)
	}

	return &Consumer{
		log:    log,
		group:  group,
		topic:  topic,
		handle: handle,
		done:   make(chan struct{}),
	}, nil
}

// Start consumes the topic until the context is canceled. It rejoins the
// group on transient errors
func (c *Consumer) Start(ctx context.Context) {
	const op = "consumer.Start"
	log := c.log.With(slog.String("op", op))

	go func() {
		defer close(c.done)

		for {
			err := c.group.Consume(ctx, []string{c.topic}, &groupHandler{
				log:    c.log,
				handle: c.handle,
			})
			if ctx.Err() != nil {
				log.Info("context is canceled")
				return
			}
			if err != nil {
				log.Error("consumer session failed, rejoining", sl.Err(err))
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
		}
	}()
}

func (c *Consumer) Stop() {
	const op = "consumer.Stop"
	c.log.Info("starting to stop consumer", slog.String("op", op))

	err := c.group.Close()
	if err != nil {
		c.log.Error("error during closing", slog.String("op", op), sl.Err(err))
	}

	<-c.done
}

type groupHandler struct {
	log    *slog.Logger
	handle Handler
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(
	sess sarama.ConsumerGroupSession,
	claim sarama.ConsumerGroupClaim,
) error {
	const op = "consumer.ConsumeClaim"
	log := h.log.With(slog.String("op", op))

	for msg := range claim.Messages() {
		payload, err := events.ParsePayload(msg.Value)
		if err != nil {
			log.Error("failed to parse event payload", sl.Err(err))
			sess.MarkMessage(msg, "")
			continue
		}

		if payload.Type == events.TypeCreated {
			h.handle(payload.Post)
		}

		sess.MarkMessage(msg, "")
	}

	return nil
}
