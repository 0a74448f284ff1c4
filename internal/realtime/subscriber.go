package realtime

import (
	"context"
	"encoding/json"

	"bpoc/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Subscriber relays notifications published on a Redis channel to the hub.
type Subscriber struct {
	rdb        *redis.Client
	channel    string
	hub        *Hub
	logger     *zap.Logger
	instanceID string
}

func NewSubscriber(rdb *redis.Client, channel string, hub *Hub, logger *zap.Logger) *Subscriber {
	return &Subscriber{
		rdb:        rdb,
		channel:    channel,
		hub:        hub,
		logger:     logger,
		instanceID: uuid.New().String()[:8],
	}
}

// Run blocks until ctx is cancelled or the subscription closes.
func (s *Subscriber) Run(ctx context.Context) {
	sub := s.rdb.Subscribe(ctx, s.channel)
	defer sub.Close()
	ch := sub.Channel()

	s.logger.Info("notification subscriber started",
		zap.String("channel", s.channel),
		zap.String("instance", s.instanceID))

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handle(msg.Payload)
		}
	}
}

func (s *Subscriber) handle(payload string) {
	var n models.Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		s.logger.Warn("discarding malformed notification", zap.Error(err))
		return
	}
	delivered := s.Deliver(n)
	s.logger.Debug("notification relayed",
		zap.String("notificationId", n.ID),
		zap.String("recipientId", n.RecipientID),
		zap.Int("connections", delivered))
}

// Deliver sends n to every connection of its recipient and returns how many
// sends succeeded.
func (s *Subscriber) Deliver(n models.Notification) int {
	delivered := 0
	for _, c := range s.hub.clientsFor(n.RecipientID) {
		if err := c.Send(n); err != nil {
			s.logger.Debug("websocket send failed", zap.String("userId", c.UserID), zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered
}
