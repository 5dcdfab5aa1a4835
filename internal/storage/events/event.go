package events

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/wallfeed/wall-service/internal/domain/models"
	errs "github.com/wallfeed/wall-service/internal/lib/errors"
)

const (
	TypeCreated = "created"
)

// Payload is the wire form of one notifier event. It carries the full
// inserted post so subscribers need no follow-up read.
type Payload struct {
	Type string      `json:"type"`
	Post models.Post `json:"post"`
}

// CollectPayload marshals the inserted post into the outbox payload string
func CollectPayload(post models.Post) (string, error) {
	const op = "events.CollectPayload"

	payload, err := json.Marshal(Payload{Type: TypeCreated, Post: post})
	if err != nil {
		return "", errs.Fail(op, err)
	}

	return string(payload), nil
}

// ParsePayload is the inverse of CollectPayload
func ParsePayload(raw []byte) (Payload, error) {
	const op = "events.ParsePayload"

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, errs.Fail(op, err)
	}

	return p, nil
}

// CollectEventId builds a unique outbox event id
func CollectEventId() string {
	return uuid.NewString()
}
