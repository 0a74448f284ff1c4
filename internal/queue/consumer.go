package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"bpoc/internal/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ErrPermanent marks a message that must not be redelivered.
var ErrPermanent = errors.New("permanent failure")

// Handler processes one delivery body.
type Handler func(ctx context.Context, body []byte) error

type Consumer struct {
	conn       *amqp.Connection
	queue      string
	numWorkers int
	handler    Handler
	logger     *zap.Logger
}

func NewConsumer(conn *amqp.Connection, queue string, numWorkers int, handler Handler, logger *zap.Logger) *Consumer {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Consumer{conn: conn, queue: queue, numWorkers: numWorkers, handler: handler, logger: logger}
}

// Consume blocks until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Consume(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}
	if err := ch.Qos(c.numWorkers, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	return c.process(ctx, deliveries)
}

func (c *Consumer) process(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	jobs := make(chan amqp.Delivery, c.numWorkers)
	var wg sync.WaitGroup
	for i := 0; i < c.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range jobs {
				c.handle(ctx, msg)
			}
		}()
	}

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				close(jobs)
				wg.Wait()
				return nil
			}
			jobs <- delivery
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
}

// handle acks on success, drops permanent failures and requeues a transient
// failure once.
func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery) {
	err := c.handler(ctx, msg.Body)
	switch {
	case err == nil:
		metrics.ObserveDelivery(c.queue, "ack")
		if ackErr := msg.Ack(false); ackErr != nil {
			c.logger.Error("failed to acknowledge message", zap.Error(ackErr))
		}
	case errors.Is(err, ErrPermanent) || msg.Redelivered:
		metrics.ObserveDelivery(c.queue, "drop")
		c.logger.Error("dropping message", zap.String("queue", c.queue), zap.Bool("redelivered", msg.Redelivered), zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("failed to reject message", zap.Error(nackErr))
		}
	default:
		metrics.ObserveDelivery(c.queue, "requeue")
		c.logger.Warn("message failed, requeueing", zap.String("queue", c.queue), zap.Error(err))
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to requeue message", zap.Error(nackErr))
		}
	}
}
