package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trackit/internal/core/domain/model/order"
	"trackit/internal/core/ports"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ExchangeName is the topic exchange lifecycle events are published to.
const ExchangeName = "order_events"

var (
	_ ports.EventPublisher = (*RabbitMQPublisher)(nil)
	_ Confirmation         = (*amqp.DeferredConfirmation)(nil)

	ErrPublishNacked    = errors.New("broker did not confirm the message")
	ErrNotInConfirmMode = errors.New("channel is not in confirm mode")
)

// Confirmation is the broker's answer to one published message. It is
// satisfied by *amqp.DeferredConfirmation.
type Confirmation interface {
	Done() <-chan struct{}
	Acked() bool
}

// AMQPChannel publishes one message and returns the confirmation bound to
// its delivery tag.
type AMQPChannel interface {
	PublishWithConfirm(ctx context.Context, exchange, key string, msg amqp.Publishing) (Confirmation, error)
}

type confirmChannel struct {
	ch *amqp.Channel
}

func (c confirmChannel) PublishWithConfirm(
	ctx context.Context,
	exchange, key string,
	msg amqp.Publishing,
) (Confirmation, error) {
	dc, err := c.ch.PublishWithDeferredConfirmWithContext(ctx,
		exchange, // exchange
		key,      // routing key
		false,    // mandatory
		false,    // immediate
		msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, ErrNotInConfirmMode
	}
	return dc, nil
}

// RabbitMQPublisher publishes persistent JSON messages to a topic exchange in
// confirm mode. Each publish waits for its own confirmation, so a
// confirmation that arrives after its caller gave up is never read by the
// next publish.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  AMQPChannel
	exchange string
	logger   *slog.Logger
}

// NewRabbitMQPublisher wraps a channel already in confirm mode.
func NewRabbitMQPublisher(channel AMQPChannel, exchange string, logger *slog.Logger) *RabbitMQPublisher {
	return &RabbitMQPublisher{
		channel:  channel,
		exchange: exchange,
		logger:   logger.With("component", "rabbitmq_publisher"),
	}
}

// DialRabbitMQ connects, declares the exchange and enables publisher confirms.
func DialRabbitMQ(url string, logger *slog.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		ExchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if err = ch.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}

	p := NewRabbitMQPublisher(confirmChannel{ch: ch}, ExchangeName, logger)
	p.conn = conn
	p.logger.Info("rabbitmq connected", "exchange", ExchangeName)
	return p, nil
}

// Publish sends every envelope of the event, stopping at the first failure.
func (p *RabbitMQPublisher) Publish(ctx context.Context, e order.Event) error {
	envelopes, err := Envelopes(e)
	if err != nil {
		return err
	}

	for _, env := range envelopes {
		if err = p.publish(ctx, e, env); err != nil {
			return err
		}
	}
	return nil
}

func (p *RabbitMQPublisher) publish(ctx context.Context, e order.Event, env Envelope) error {
	confirm, err := p.channel.PublishWithConfirm(ctx, p.exchange, env.RoutingKey, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    env.EventID,
		Type:         env.Audience,
		Timestamp:    e.OccurredAt,
		Body:         env.Body,
	})
	if err != nil {
		return fmt.Errorf("publish event %s: %w", e.ID, err)
	}

	select {
	case <-confirm.Done():
		if !confirm.Acked() {
			return fmt.Errorf("publish event %s to %s: %w", e.ID, env.RoutingKey, ErrPublishNacked)
		}
	case <-ctx.Done():
		return fmt.Errorf("publish event %s: %w", e.ID, ctx.Err())
	}

	p.logger.DebugContext(ctx, "event published", "event_id", env.EventID, "routing_key", env.RoutingKey)
	return nil
}

// Close releases the connection opened by DialRabbitMQ.
func (p *RabbitMQPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
