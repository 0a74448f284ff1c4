package repositories

import (
	"context"

	"bpoc/internal/models"

	"gorm.io/gorm"
)

type JobRepository struct {
	DB *gorm.DB
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	return r.DB.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	var job models.Job
	if err := r.DB.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrJobNotFound)
	}
	return &job, nil
}

// List returns jobs filtered by status and agency when non-empty.
func (r *JobRepository) List(ctx context.Context, status models.JobStatus, agencyID string) ([]models.Job, error) {
	q := r.DB.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if agencyID != "" {
		q = q.Where("agency_id = ?", agencyID)
	}
	var jobs []models.Job
	err := q.Find(&jobs).Error
	return jobs, err
}

type ApplicationRepository struct {
	DB *gorm.DB
}

// Create leaves recruiter_id NULL until a recruiter takes the application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	q := r.DB.WithContext(ctx)
	if app.RecruiterID == "" {
		q = q.Omit("recruiter_id")
	}
	return q.Create(app).Error
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	if err := r.DB.WithContext(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrApplicationNotFound)
	}
	return &app, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res := r.DB.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

// ApplicationSummary is the flattened row used by exports.
type ApplicationSummary struct {
	ApplicationID string
	CandidateName string
	Email         string
	JobTitle      string
	Status        string
}

func (r *ApplicationRepository) ListSummaries(ctx context.Context) ([]ApplicationSummary, error) {
	var rows []ApplicationSummary
	err := r.DB.WithContext(ctx).
		Table("applications AS a").
		Select("a.id AS application_id, TRIM(c.first_name || ' ' || c.last_name) AS candidate_name, c.email AS email, j.title AS job_title, a.status AS status").
		Joins("JOIN candidates c ON c.id = a.candidate_id").
		Joins("JOIN jobs j ON j.id = a.job_id").
		Order("a.created_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *ApplicationRepository) AssignRecruiter(ctx context.Context, id, recruiterID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Update("recruiter_id", recruiterID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}
