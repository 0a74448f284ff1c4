package repositories

import (
	"context"
	"strings"

	"bpoc/internal/models"

	"gorm.io/gorm"
)

type AgencyRepository struct {
	DB *gorm.DB
}

func (r *AgencyRepository) Create(ctx context.Context, agency *models.Agency) error {
	return r.DB.WithContext(ctx).Create(agency).Error
}

func (r *AgencyRepository) List(ctx context.Context, activeOnly bool) ([]models.Agency, error) {
	var agencies []models.Agency
	q := r.DB.WithContext(ctx).Order("name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&agencies).Error
	return agencies, err
}

func (r *AgencyRepository) GetByID(ctx context.Context, id string) (*models.Agency, error) {
	var agency models.Agency
	err := r.DB.WithContext(ctx).Preload("Recruiters").First(&agency, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrAgencyNotFound)
	}
	return &agency, nil
}

type RecruiterRepository struct {
	DB *gorm.DB
}

func (r *RecruiterRepository) Create(ctx context.Context, recruiter *models.Recruiter) error {
	return r.DB.WithContext(ctx).Create(recruiter).Error
}

func (r *RecruiterRepository) GetByUserID(ctx context.Context, userID string) (*models.Recruiter, error) {
	var recruiter models.Recruiter
	err := r.DB.WithContext(ctx).First(&recruiter, "user_id = ?", userID).Error
	if err != nil {
		return nil, notFound(err, ErrRecruiterNotFound)
	}
	return &recruiter, nil
}

func (r *RecruiterRepository) ListByAgency(ctx context.Context, agencyID string) ([]models.Recruiter, error) {
	var recruiters []models.Recruiter
	err := r.DB.WithContext(ctx).Where("agency_id = ?", agencyID).Order("created_at ASC").Find(&recruiters).Error
	return recruiters, err
}

// IsAgencyMember reports whether userID recruits for agencyID.
func (r *RecruiterRepository) IsAgencyMember(ctx context.Context, userID, agencyID string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.Recruiter{}).
		Where("user_id = ? AND agency_id = ?", userID, agencyID).
		Count(&count).Error
	return count > 0, err
}

// CandidateFilter narrows candidate searches. Zero values match everything.
type CandidateFilter struct {
	Search string
	Skill  string
	Limit  int
	Offset int
}

type CandidateRepository struct {
	DB *gorm.DB
}

func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	return r.DB.WithContext(ctx).Create(candidate).Error
}

func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.DB.WithContext(ctx).First(&candidate, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, ErrCandidateNotFound)
	}
	return &candidate, nil
}

func (r *CandidateRepository) Search(ctx context.Context, filter CandidateFilter) ([]models.Candidate, error) {
	q := r.DB.WithContext(ctx).Model(&models.Candidate{}).Where("is_active = ?", true)
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(headline) LIKE ?",
			like, like, like, like)
	}
	if skill := strings.TrimSpace(filter.Skill); skill != "" {
		// skills is a text[] in postgres and a "{a,b}" literal in sqlite; both match as text.
		q = q.Where("LOWER(CAST(skills AS TEXT)) LIKE ?", "%"+strings.ToLower(skill)+"%")
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var candidates []models.Candidate
	err := q.Order("created_at DESC").Find(&candidates).Error
	return candidates, err
}

// UpdateResume stores extracted resume text and the generated summary.
func (r *CandidateRepository) UpdateResume(ctx context.Context, id, resumeURL, text, summary string) error {
	res := r.DB.WithContext(ctx).Model(&models.Candidate{}).Where("id = ?", id).Updates(map[string]any{
		"resume_url":  resumeURL,
		"resume_text": text,
		"ai_summary":  summary,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

type UserProfileRepository struct {
	DB *gorm.DB
}

func (r *UserProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	return r.DB.WithContext(ctx).Create(profile).Error
}

func (r *UserProfileRepository) GetByEmail(ctx context.Context, email string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.DB.WithContext(ctx).First(&profile, "LOWER(email) = ?", strings.ToLower(email)).Error
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return &profile, nil
}

func (r *UserProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := r.DB.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return &profile, nil
}
