package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bayworx/event-management-system-sub001/internal/outbox"
	"github.com/bayworx/event-management-system-sub001/internal/rabbit"
	"github.com/rs/zerolog"
)

// Handler processes the payload of one envelope type.
type Handler func(ctx context.Context, payload json.RawMessage) error

type Reader struct {
	RMQ      rabbit.Consumer
	log      *zerolog.Logger
	handlers map[string]Handler
	done     chan struct{}
	cancel   context.CancelFunc
}

func NewReader(rmq rabbit.Consumer, log *zerolog.Logger) *Reader {
	return &Reader{
		RMQ:      rmq,
		log:      log,
		handlers: make(map[string]Handler),
		done:     make(chan struct{}),
	}
}

// Handle registers h for messages of msgType, replacing any previous handler.
func (r *Reader) Handle(msgType string, h Handler) {
	r.handlers[msgType] = h
}

// Dispatch routes one message body. Bodies that are not envelopes, unknown types and
// permanent handler failures are logged and dropped. Other handler errors are returned
// so the delivery is retried.
func (r *Reader) Dispatch(ctx context.Context, body []byte) error {
	env, err := outbox.Decode(body)
	if err != nil {
		r.log.Error().Err(err).Msgf("Dropping undecodable message: %s", string(body))
		return nil
	}

	h, ok := r.handlers[env.Type]
	if !ok {
		r.log.Warn().Str("type", env.Type).Msg("No handler for message type, acking")
		return nil
	}

	r.log.Info().Str("type", env.Type).Msg("📩 Received message from RabbitMQ")
	if err := h(ctx, env.Payload); err != nil {
		if errors.Is(err, ErrPermanent) {
			r.log.Error().Err(err).Str("type", env.Type).Msg("Message cannot be processed, acking")
			return nil
		}
		r.log.Error().Err(err).Str("type", env.Type).Msg("Message handler failed")
		return fmt.Errorf("handle %s: %w", env.Type, err)
	}
	return nil
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.log.Info().Msg("🐇 RabbitMQ Reader started")

	go func() {
		defer close(r.done)

		handler := func(_ string, body []byte) error {
			return r.Dispatch(cctx, body)
		}
		if err := r.RMQ.Consume(handler); err != nil {
			r.log.Error().Err(err).Msg("Failed to start consuming")
			return
		}

		<-cctx.Done()
		r.log.Info().Msg("🛑 RabbitMQ Reader stopped by context")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

// ErrPermanent marks a handler failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent failure")

// decodePayload unmarshals payload into dst, reporting malformed payloads as permanent.
func decodePayload(payload json.RawMessage, dst any) error {
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: decode payload: %v", ErrPermanent, err)
	}
	return nil
}
