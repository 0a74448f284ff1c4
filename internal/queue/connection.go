// Package queue moves campaign emails through RabbitMQ.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var dialFn = func(url string) (*amqp.Connection, error) { return amqp.Dial(url) }

// Dial connects with exponential backoff and closes the connection when ctx
// is cancelled.
func Dial(ctx context.Context, url string, maxTries uint, logger *zap.Logger) (*amqp.Connection, error) {
	operation := func() (*amqp.Connection, error) {
		conn, err := dialFn(url)
		if err != nil {
			logger.Warn("failed to connect to RabbitMQ, retrying", zap.Error(err))
			return nil, err
		}
		return conn, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 10 * time.Second
	if maxTries == 0 {
		maxTries = 5
	}
	conn, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(maxTries))
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	logger.Info("connected to RabbitMQ")

	go func() {
		<-ctx.Done()
		if err := conn.Close(); err != nil && err != amqp.ErrClosed {
			logger.Warn("failed to close RabbitMQ connection", zap.Error(err))
		}
	}()
	return conn, nil
}
