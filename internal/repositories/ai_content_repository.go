package repositories

import (
	"context"

	"bpoc/internal/models"

	"gorm.io/gorm"
)

type AIContentRepository struct {
	DB *gorm.DB
}

func (r *AIContentRepository) Create(ctx context.Context, content *models.AIContent) error {
	return r.DB.WithContext(ctx).Create(content).Error
}

func (r *AIContentRepository) GetByID(ctx context.Context, id string) (*models.AIContent, error) {
	var content models.AIContent
	if err := r.DB.WithContext(ctx).First(&content, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrAIContentNotFound)
	}
	return &content, nil
}

func (r *AIContentRepository) Save(ctx context.Context, content *models.AIContent) error {
	return r.DB.WithContext(ctx).Save(content).Error
}

// ListRetryable returns failed generations that still have attempts left.
func (r *AIContentRepository) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]models.AIContent, error) {
	q := r.DB.WithContext(ctx).
		Where("status = ? AND attempts < ?", models.AIContentFailed, maxAttempts).
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.AIContent
	err := q.Find(&out).Error
	return out, err
}
