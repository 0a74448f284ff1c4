// Package notifications persists in-app notifications and fans them out to
// connected clients over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"bpoc/internal/models"
	"bpoc/internal/repositories"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultChannel = "notifications"

// Publisher is the subset of *redis.Client used for fan-out.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Notifier struct {
	repo      *repositories.NotificationRepository
	publisher Publisher
	channel   string
	logger    *zap.Logger
}

// NewNotifier returns a notifier. A nil publisher disables realtime fan-out.
func NewNotifier(repo *repositories.NotificationRepository, publisher Publisher, channel string, logger *zap.Logger) *Notifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Notifier{repo: repo, publisher: publisher, channel: channel, logger: logger}
}

// Notify stores n and publishes it. Only the insert can fail the call; a
// publish failure is logged since the row is already readable via the API.
func (s *Notifier) Notify(ctx context.Context, n *models.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	if s.publisher == nil {
		return nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		s.logger.Warn("encode notification", zap.String("notificationId", n.ID), zap.Error(err))
		return nil
	}
	if err := s.publisher.Publish(ctx, s.channel, payload).Err(); err != nil {
		s.logger.Warn("publish notification",
			zap.String("notificationId", n.ID),
			zap.String("channel", s.channel),
			zap.Error(err))
	}
	return nil
}

func (s *Notifier) List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipientID, unreadOnly, limit)
}

func (s *Notifier) MarkRead(ctx context.Context, id, recipientID string) error {
	return s.repo.MarkRead(ctx, id, recipientID)
}
