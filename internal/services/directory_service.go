package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bpoc/internal/models"
	"bpoc/internal/repositories"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Caller is the authenticated identity a service acts for.
type Caller struct {
	UserID   string
	Role     string
	AgencyID string
}

func (c Caller) IsStaff() bool {
	return c.Role == models.RoleAdmin || c.Role == models.RoleRecruiter
}

type CreateJobInput struct {
	ClientName  string
	Title       string
	Description string
	Skills      []string
	Status      models.JobStatus
	SalaryMin   int
	SalaryMax   int
	Currency    string
}

type ApplyInput struct {
	JobID string
}

// DirectoryService is the read-mostly surface over agencies, candidates,
// jobs and applications.
type DirectoryService struct {
	store *repositories.Store
}

func NewDirectoryService(store *repositories.Store) *DirectoryService {
	return &DirectoryService{store: store}
}

func (s *DirectoryService) ListAgencies(ctx context.Context, caller Caller) ([]models.Agency, error) {
	return s.store.Agencies.List(ctx, caller.Role != models.RoleAdmin)
}

func (s *DirectoryService) GetAgency(ctx context.Context, id string) (*models.Agency, error) {
	agency, err := s.store.Agencies.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "agency not found")
	}
	return agency, nil
}

func (s *DirectoryService) SearchCandidates(ctx context.Context, filter repositories.CandidateFilter) ([]models.Candidate, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = defaultPageSize
	case filter.Limit > maxPageSize:
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		return nil, validationf("offset must not be negative")
	}
	return s.store.Candidates.Search(ctx, filter)
}

// GetCandidate is open to staff and to the candidates themselves.
func (s *DirectoryService) GetCandidate(ctx context.Context, caller Caller, id string) (*models.Candidate, error) {
	if !caller.IsStaff() && caller.UserID != id {
		return nil, forbidden("you can only view your own profile")
	}
	candidate, err := s.store.Candidates.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "candidate not found")
	}
	return candidate, nil
}

// ListJobs shows open jobs to everyone; staff may filter by any status and
// recruiters see their own agency only.
func (s *DirectoryService) ListJobs(ctx context.Context, caller Caller, status string) ([]models.Job, error) {
	st := models.JobStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && st != models.JobStatusDraft && st != models.JobStatusOpen && st != models.JobStatusClosed {
		return nil, validationf("invalid status %q", status)
	}
	agencyID := ""
	switch caller.Role {
	case models.RoleAdmin:
	case models.RoleRecruiter:
		agencyID = caller.AgencyID
	default:
		st = models.JobStatusOpen
	}
	return s.store.Jobs.List(ctx, st, agencyID)
}

func (s *DirectoryService) CreateJob(ctx context.Context, caller Caller, in CreateJobInput) (*models.Job, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, validationf("title is required")
	}
	if in.SalaryMin < 0 || (in.SalaryMax > 0 && in.SalaryMax < in.SalaryMin) {
		return nil, validationf("invalid salary range")
	}
	status := in.Status
	if status == "" {
		status = models.JobStatusDraft
	}
	if status != models.JobStatusDraft && status != models.JobStatusOpen {
		return nil, validationf("new jobs must be draft or open")
	}

	recruiter, err := s.store.Recruiters.GetByUserID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, forbidden("only agency recruiters can post jobs")
		}
		return nil, err
	}

	job := &models.Job{
		AgencyID:    recruiter.AgencyID,
		ClientName:  strings.TrimSpace(in.ClientName),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Skills:      in.Skills,
		Status:      status,
		SalaryMin:   in.SalaryMin,
		SalaryMax:   in.SalaryMax,
		Currency:    displayOr(in.Currency, "PHP"),
	}
	if err := s.store.Jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// Apply files an application for the calling candidate.
func (s *DirectoryService) Apply(ctx context.Context, caller Caller, jobID string) (*models.Application, error) {
	if caller.Role != models.RoleCandidate {
		return nil, forbidden("only candidates can apply")
	}
	job, err := s.store.Jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFoundOr(err, "job not found")
	}
	if job.Status != models.JobStatusOpen {
		return nil, conflict("job is not accepting applications", nil)
	}
	if _, err := s.store.Candidates.GetByID(ctx, caller.UserID); err != nil {
		return nil, notFoundOr(err, "candidate profile not found")
	}
	app := &models.Application{JobID: job.ID, CandidateID: caller.UserID, Status: PipelineStages[0]}
	if err := s.store.Applications.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

// AssignRecruiter sets the recruiter who owns the application's interviews.
func (s *DirectoryService) AssignRecruiter(ctx context.Context, caller Caller, applicationID string) (*models.Application, error) {
	app, err := s.store.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	job, err := s.store.Jobs.GetByID(ctx, app.JobID)
	if err != nil {
		return nil, notFoundOr(err, "job not found")
	}
	member, err := s.store.Recruiters.IsAgencyMember(ctx, caller.UserID, job.AgencyID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, forbidden("only the agency's recruiters can take this application")
	}
	if err := s.store.Applications.AssignRecruiter(ctx, app.ID, caller.UserID); err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	app.RecruiterID = caller.UserID
	return app, nil
}
