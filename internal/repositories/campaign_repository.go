package repositories

import (
	"context"
	"time"

	"bpoc/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	DB *gorm.DB
}

// Create inserts the campaign together with its recipients.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.EmailCampaign) error {
	return r.DB.WithContext(ctx).Create(campaign).Error
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*models.EmailCampaign, error) {
	var campaign models.EmailCampaign
	if err := r.DB.WithContext(ctx).First(&campaign, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrCampaignNotFound)
	}
	return &campaign, nil
}

func (r *CampaignRepository) SetStatus(ctx context.Context, id string, status models.CampaignStatus) error {
	return r.DB.WithContext(ctx).Model(&models.EmailCampaign{}).Where("id = ?", id).Update("status", status).Error
}

// TransitionStatus moves the campaign from one status to another and reports
// whether this call made the change.
func (r *CampaignRepository) TransitionStatus(ctx context.Context, id string, from, to models.CampaignStatus) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.EmailCampaign{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CampaignRepository) PendingRecipients(ctx context.Context, campaignID string) ([]models.EmailRecipient, error) {
	var recipients []models.EmailRecipient
	err := r.DB.WithContext(ctx).
		Where("campaign_id = ? AND status = ?", campaignID, models.RecipientPending).
		Order("created_at ASC").
		Find(&recipients).Error
	return recipients, err
}

func (r *CampaignRepository) GetRecipient(ctx context.Context, id string) (*models.EmailRecipient, error) {
	var recipient models.EmailRecipient
	if err := r.DB.WithContext(ctx).First(&recipient, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrRecipientNotFound)
	}
	return &recipient, nil
}

// MarkRecipient records the delivery outcome. sendErr nil means sent.
func (r *CampaignRepository) MarkRecipient(ctx context.Context, id string, sendErr error, at time.Time) error {
	updates := map[string]any{"status": models.RecipientSent, "sent_at": at, "error": ""}
	if sendErr != nil {
		updates = map[string]any{"status": models.RecipientFailed, "error": sendErr.Error()}
	}
	return r.DB.WithContext(ctx).Model(&models.EmailRecipient{}).Where("id = ?", id).Updates(updates).Error
}

// RecipientCounts returns the number of recipients per status.
func (r *CampaignRepository) RecipientCounts(ctx context.Context, campaignID string) (map[models.RecipientStatus]int64, error) {
	var rows []struct {
		Status models.RecipientStatus
		Count  int64
	}
	err := r.DB.WithContext(ctx).Model(&models.EmailRecipient{}).
		Select("status, COUNT(*) AS count").
		Where("campaign_id = ?", campaignID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[models.RecipientStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
