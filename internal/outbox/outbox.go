// Package outbox records integration messages in async_messages next to the rows that
// caused them and relays them to RabbitMQ.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/jsonform"
	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
)

const (
	TypeAttendeeVerify  = "attendee.verify"
	TypeMessageCreated  = "message.created"
	TypeImportRequested = "import.requested"
)

var ErrBadEnvelope = errors.New("bad outbox envelope")

// Envelope is the body of every queued message.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type AttendeeVerifyPayload struct {
	AttendeeID int64 `json:"attendee_id"`
}

type MessageCreatedPayload struct {
	MessageID int64 `json:"message_id"`
}

type ImportRequestedPayload struct {
	ImportID int64 `json:"import_id"`
}

// NewMessage wraps payload in an envelope addressed to queue, available after delay.
func NewMessage(queue, msgType string, payload any, delay time.Duration) (*model.AsyncMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	body, err := json.Marshal(Envelope{Type: msgType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}

	m := &model.AsyncMessage{
		Body:      string(body),
		QueueName: queue,
		Headers: jsonform.NewValue(map[string]any{
			"type":         msgType,
			"content_type": "application/json",
		}),
	}
	if delay > 0 {
		m.AvailableAt = time.Now().Add(delay)
	}
	return m, nil
}

// Decode reads an envelope body.
func Decode(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrBadEnvelope, err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrBadEnvelope)
	}
	return env, nil
}

// Notify returns an OutboxFunc recording a message whose payload is built from the new row id.
func Notify(queue, msgType string, payload func(id int64) any) repo.OutboxFunc {
	return func(id int64) (*model.AsyncMessage, error) {
		return NewMessage(queue, msgType, payload(id), 0)
	}
}

// Enqueue records a message outside of any other write.
func Enqueue(ctx context.Context, r repo.OutboxRepository, queue, msgType string, payload any, delay time.Duration) (int64, error) {
	m, err := NewMessage(queue, msgType, payload, delay)
	if err != nil {
		return 0, err
	}
	return r.EnqueueAsyncMessage(ctx, m)
}
