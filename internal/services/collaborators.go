package services

import (
	"context"
	"time"

	"bpoc/internal/daily"
	"bpoc/internal/models"

	"go.uber.org/zap"
)

// VideoProvider provisions and inspects external call rooms.
type VideoProvider interface {
	CreateRoom(ctx context.Context, req daily.CreateRoomRequest) (*daily.Room, error)
	DeleteRoom(ctx context.Context, name string) error
	GetPresence(ctx context.Context, name string) (*daily.Presence, error)
}

// Notifier delivers in-app notifications. Callers treat failures as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// Clock is swapped in tests.
type Clock func() time.Time

func notifyBestEffort(ctx context.Context, notifier Notifier, logger *zap.Logger, n *models.Notification) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, n); err != nil {
		logger.Warn("notification failed",
			zap.String("type", n.Type),
			zap.String("recipientId", n.RecipientID),
			zap.Error(err))
	}
}
