package repositories

import (
	"context"
	"time"

	"bpoc/internal/models"

	"gorm.io/gorm"
)

type InterviewRepository struct {
	DB *gorm.DB
}

func (r *InterviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	return r.DB.WithContext(ctx).Create(interview).Error
}

func (r *InterviewRepository) GetByID(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	if err := r.DB.WithContext(ctx).First(&interview, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrInterviewNotFound)
	}
	return &interview, nil
}

// FindUnscheduled returns the newest unscheduled interview for an application.
func (r *InterviewRepository) FindUnscheduled(ctx context.Context, applicationID string) (*models.Interview, error) {
	var interview models.Interview
	err := r.DB.WithContext(ctx).
		Where("application_id = ? AND status = ?", applicationID, models.InterviewUnscheduled).
		Order("created_at DESC").
		First(&interview).Error
	if err != nil {
		return nil, notFound(err, ErrInterviewNotFound)
	}
	return &interview, nil
}

// MarkScheduled records the accepted slot and provisioned room on the interview.
func (r *InterviewRepository) MarkScheduled(ctx context.Context, id string, at time.Time, roomName, roomURL string) error {
	res := r.DB.WithContext(ctx).Model(&models.Interview{}).Where("id = ?", id).Updates(map[string]any{
		"status":          models.InterviewScheduled,
		"scheduled_at":    at,
		"daily_room_name": roomName,
		"daily_room_url":  roomURL,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

// ListReminderDue returns scheduled interviews starting in (from, to] whose
// sentColumn reminder stamp is still empty.
func (r *InterviewRepository) ListReminderDue(ctx context.Context, from, to time.Time, sentColumn string) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.DB.WithContext(ctx).
		Where("status = ?", models.InterviewScheduled).
		Where("scheduled_at > ? AND scheduled_at <= ?", from, to).
		Where(sentColumn + " IS NULL").
		Order("scheduled_at ASC").
		Find(&interviews).Error
	return interviews, err
}

// MarkReminderSent stamps sentColumn unless another worker already did.
// It reports whether this call claimed the reminder.
func (r *InterviewRepository) MarkReminderSent(ctx context.Context, id, sentColumn string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Interview{}).
		Where("id = ? AND "+sentColumn+" IS NULL", id).
		Update(sentColumn, at)
	return res.RowsAffected == 1, res.Error
}

func (r *InterviewRepository) CreateProposal(ctx context.Context, proposal *models.InterviewProposal) error {
	return r.DB.WithContext(ctx).Create(proposal).Error
}

func (r *InterviewRepository) GetProposal(ctx context.Context, id string) (*models.InterviewProposal, error) {
	var proposal models.InterviewProposal
	if err := r.DB.WithContext(ctx).First(&proposal, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrProposalNotFound)
	}
	return &proposal, nil
}

// DecideProposal moves a pending proposal to status. Zero affected rows means
// a concurrent responder got there first.
func (r *InterviewRepository) DecideProposal(ctx context.Context, id string, status models.ProposalStatus) error {
	res := r.DB.WithContext(ctx).Model(&models.InterviewProposal{}).
		Where("id = ? AND status = ?", id, models.ProposalPending).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProposalNotPending
	}
	return nil
}

func (r *InterviewRepository) CreateResponse(ctx context.Context, response *models.TimeProposalResponse) error {
	return r.DB.WithContext(ctx).Create(response).Error
}

func (r *InterviewRepository) ListResponses(ctx context.Context, proposalID string) ([]models.TimeProposalResponse, error) {
	var responses []models.TimeProposalResponse
	err := r.DB.WithContext(ctx).Where("proposal_id = ?", proposalID).Order("created_at ASC").Find(&responses).Error
	return responses, err
}
