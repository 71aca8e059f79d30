package rabbit

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wb-go/wbf/zlog"
)

type Config struct {
	URL      string
	Exchange string
	Queue    string
	// Prefetch limits unacked deliveries per consumer. 0 leaves the broker default.
	Prefetch int
}

type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     Config
}

type Publisher interface {
	Publish(message []byte, msgType string, delaySeconds int) error
}

type Consumer interface {
	Consume(handler func(msgType string, body []byte) error) error
}

// NewRabbit dials the broker and declares a delayed-message exchange bound to one durable queue.
func NewRabbit(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to connect to RabbitMQ")
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		zlog.Logger.Error().Err(err).Msg("failed to open RabbitMQ channel")
		return nil, err
	}

	client := &Client{conn: conn, channel: ch, cfg: cfg}
	if err := client.declareTopology(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to declare RabbitMQ topology")
		client.Close()
		return nil, err
	}

	zlog.Logger.Info().Msgf("RabbitMQ initialized (exchange=%s, queue=%s)", cfg.Exchange, cfg.Queue)
	return client, nil
}

func (c *Client) declareTopology() error {
	args := amqp.Table{"x-delayed-type": "direct"}
	if err := c.channel.ExchangeDeclare(c.cfg.Exchange, "x-delayed-message", true, false, false, false, args); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.cfg.Exchange, err)
	}
	if _, err := c.channel.QueueDeclare(c.cfg.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.cfg.Queue, err)
	}
	if err := c.channel.QueueBind(c.cfg.Queue, "", c.cfg.Exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", c.cfg.Queue, err)
	}
	if c.cfg.Prefetch > 0 {
		if err := c.channel.Qos(c.cfg.Prefetch, 0, false); err != nil {
			return fmt.Errorf("set prefetch: %w", err)
		}
	}
	return nil
}

func (c *Client) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
	zlog.Logger.Info().Msg("RabbitMQ connection closed")
}

// Publish sends a persistent JSON message. msgType is copied to the AMQP type property.
func (c *Client) Publish(message []byte, msgType string, delaySeconds int) error {
	headers := amqp.Table{}
	if delaySeconds > 0 {
		headers["x-delay"] = int32(delaySeconds * 1000)
	}

	err := c.channel.Publish(c.cfg.Exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         msgType,
		Body:         message,
		Timestamp:    time.Now(),
		Headers:      headers,
	})
	if err != nil {
		zlog.Logger.Error().Err(err).Str("type", msgType).Msg("failed to publish message to RabbitMQ")
		return err
	}

	zlog.Logger.Debug().Str("type", msgType).Msgf("Message published to exchange=%s delay=%ds", c.cfg.Exchange, delaySeconds)
	return nil
}

// Consume delivers messages to handler until the channel closes. A failed message is
// requeued once; a second failure drops it.
func (c *Client) Consume(handler func(msgType string, body []byte) error) error {
	msgs, err := c.channel.Consume(c.cfg.Queue, "", false, false, false, false, nil)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to start consuming messages")
		return err
	}

	go func() {
		for d := range msgs {
			if err := handler(d.Type, d.Body); err != nil {
				requeue := !d.Redelivered
				zlog.Logger.Warn().Err(err).Str("type", d.Type).Bool("requeue", requeue).Msg("failed to process message")
				_ = d.Nack(false, requeue)
				continue
			}
			_ = d.Ack(false)
		}
	}()

	zlog.Logger.Info().Msgf("Started consuming from queue %s", c.cfg.Queue)
	return nil
}
