package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends events to an AMQP queue. A connection is opened per publish;
// the channel runs in confirm mode and the broker ack is awaited before
// teardown, so no in-flight publish is dropped by an early close.
type Publisher struct {
	logger  *slog.Logger
	url     string
	queue   string
	timeout time.Duration
}

// NewPublisher constructs a Publisher for the given broker URL and queue.
func NewPublisher(logger *slog.Logger, url, queue string) *Publisher {
	return &Publisher{
		logger:  logger,
		url:     url,
		queue:   queue,
		timeout: 10 * time.Second,
	}
}

// Publish enqueues one event for the given operation. Callers treat this as
// fire-and-forget; the error is returned for logging only.
func (p *Publisher) Publish(ctx context.Context, op Operation) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("connect broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %q: %w", p.queue, err)
	}

	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("confirm mode: %w", err)
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	event := NewEvent(op)
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	p.logger.Info("publishing metric",
		slog.String("queue", p.queue),
		slog.String("operation", string(op)),
		slog.String("id", event.ID))

	err = ch.PublishWithContext(publishCtx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %q: %w", p.queue, err)
	}

	select {
	case confirmed, ok := <-confirms:
		if !ok {
			return fmt.Errorf("confirmation channel closed")
		}
		if !confirmed.Ack {
			return fmt.Errorf("broker rejected publish to %q", p.queue)
		}
	case <-publishCtx.Done():
		return fmt.Errorf("publish confirmation: %w", publishCtx.Err())
	}
	return nil
}
