package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/bayworx/event-management-system-sub001/internal/model"
	"github.com/bayworx/event-management-system-sub001/internal/rabbit"
	"github.com/bayworx/event-management-system-sub001/internal/repo"
	"github.com/rs/zerolog"
)

type RelayConfig struct {
	Queue        string
	PollInterval time.Duration
	BatchSize    int
}

// Relay moves undelivered async messages to the broker.
type Relay struct {
	repo repo.OutboxRepository
	pub  rabbit.Publisher
	cfg  RelayConfig
	log  *zerolog.Logger
}

func NewRelay(r repo.OutboxRepository, pub rabbit.Publisher, cfg RelayConfig, log *zerolog.Logger) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Relay{repo: r, pub: pub, cfg: cfg, log: log}
}

// Run polls until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	r.log.Info().Str("queue", r.cfg.Queue).Dur("interval", r.cfg.PollInterval).Msg("outbox relay started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.Tick(ctx); err != nil && ctx.Err() == nil {
				r.log.Error().Err(err).Msg("outbox relay tick failed")
			}
		}
	}
}

// Tick delivers one batch and returns how many messages were published.
func (r *Relay) Tick(ctx context.Context) (int, error) {
	n, err := r.repo.DeliverAsyncMessages(ctx, r.cfg.Queue, r.cfg.BatchSize, r.publish)
	if err != nil {
		return 0, fmt.Errorf("deliver async messages: %w", err)
	}
	if n > 0 {
		r.log.Debug().Int("published", n).Msg("outbox batch delivered")
	}
	return n, nil
}

func (r *Relay) publish(m model.AsyncMessage) error {
	msgType := ""
	if h, ok := m.Headers.V.(map[string]any); ok {
		msgType, _ = h["type"].(string)
	}
	if msgType == "" {
		if env, err := Decode([]byte(m.Body)); err == nil {
			msgType = env.Type
		}
	}
	return r.pub.Publish([]byte(m.Body), msgType, 0)
}
