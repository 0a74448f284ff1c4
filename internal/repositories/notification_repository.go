package repositories

import (
	"context"

	"bpoc/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := r.DB.WithContext(ctx).Where("recipient_id = ?", recipientID).Order("created_at DESC")
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Notification
	err := q.Find(&out).Error
	return out, err
}

// MarkRead only touches notifications owned by recipientID.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
