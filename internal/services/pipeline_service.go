package services

import (
	"context"
	"fmt"
	"strings"

	"bpoc/internal/models"
	"bpoc/internal/repositories"
)

// PipelineStages is the fixed application funnel, in order.
var PipelineStages = []string{
	"submitted",
	"under_review",
	"shortlisted",
	"interview_scheduled",
	"interviewed",
	"offer_sent",
	"offer_accepted",
	"hired",
}

var stageSynonyms = map[string]string{
	"applied":              "submitted",
	"new":                  "submitted",
	"pending":              "submitted",
	"reviewing":            "under_review",
	"in_review":            "under_review",
	"screening":            "under_review",
	"for_review":           "under_review",
	"qualified":            "shortlisted",
	"short_listed":         "shortlisted",
	"invited_to_interview": "interview_scheduled",
	"for_interview":        "interview_scheduled",
	"interview":            "interview_scheduled",
	"scheduled":            "interview_scheduled",
	"interview_done":       "interviewed",
	"interview_completed":  "interviewed",
	"offered":              "offer_sent",
	"offer":                "offer_sent",
	"offer_extended":       "offer_sent",
	"accepted":             "offer_accepted",
	"placed":               "hired",
	"onboarded":            "hired",
	"deployed":             "hired",
}

var terminalStatuses = map[string]bool{
	"rejected":     true,
	"not_selected": true,
	"withdrawn":    true,
	"declined":     true,
}

// Progress is an application's position in the funnel.
type Progress struct {
	Stage    string `json:"stage"`
	Index    int    `json:"index"`
	Total    int    `json:"total"`
	Percent  int    `json:"percent"`
	Terminal bool   `json:"terminal"`
}

func normalizeStatus(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	return strings.Trim(s, "_")
}

// canonicalStatus is the stored form of a status: synonyms resolve to their
// funnel stage, anything else is kept normalized.
func canonicalStatus(status string) string {
	s := normalizeStatus(status)
	if mapped, ok := stageSynonyms[s]; ok {
		return mapped
	}
	return s
}

// StageFor maps a free-text status onto the funnel. Unknown statuses sit at
// the first stage. Terminal statuses keep index -1.
func StageFor(status string) Progress {
	total := len(PipelineStages)
	s := normalizeStatus(status)
	if terminalStatuses[s] {
		return Progress{Stage: s, Index: -1, Total: total, Terminal: true}
	}
	if mapped, ok := stageSynonyms[s]; ok {
		s = mapped
	}
	idx := 0
	for i, stage := range PipelineStages {
		if stage == s {
			idx = i
			break
		}
	}
	return Progress{
		Stage:   PipelineStages[idx],
		Index:   idx,
		Total:   total,
		Percent: (idx + 1) * 100 / total,
	}
}

type PipelineService struct {
	store *repositories.Store
}

func NewPipelineService(store *repositories.Store) *PipelineService {
	return &PipelineService{store: store}
}

func (s *PipelineService) Progress(ctx context.Context, applicationID string) (*Progress, error) {
	app, err := s.store.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	p := StageFor(app.Status)
	return &p, nil
}

// UpdateStatus lets the application's recruiter, or any recruiter of the
// job's agency, move the application. Synonyms are stored as their stage.
func (s *PipelineService) UpdateStatus(ctx context.Context, callerID, applicationID, status string) (*models.Application, error) {
	norm := canonicalStatus(status)
	if norm == "" {
		return nil, validationf("status is required")
	}
	app, err := s.store.Applications.GetByID(ctx, applicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	if app.RecruiterID != callerID {
		job, err := s.store.Jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return nil, notFoundOr(err, "job not found")
		}
		member, err := s.store.Recruiters.IsAgencyMember(ctx, callerID, job.AgencyID)
		if err != nil {
			return nil, fmt.Errorf("check agency membership: %w", err)
		}
		if !member {
			return nil, forbidden("only the agency's recruiters can move this application")
		}
	}

	if err := s.store.Applications.UpdateStatus(ctx, app.ID, norm); err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	app.Status = norm
	return app, nil
}
