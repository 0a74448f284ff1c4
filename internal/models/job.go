package models

import "github.com/lib/pq"

type JobStatus string

const (
	JobStatusDraft  JobStatus = "draft"
	JobStatusOpen   JobStatus = "open"
	JobStatusClosed JobStatus = "closed"
)

type Job struct {
	Base
	AgencyID    string         `gorm:"type:uuid;index;not null" json:"agencyId"`
	ClientName  string         `json:"clientName"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Skills      pq.StringArray `gorm:"type:text" json:"skills"`
	Status      JobStatus      `gorm:"default:'draft';index" json:"status"`
	SalaryMin   int            `json:"salaryMin"`
	SalaryMax   int            `json:"salaryMax"`
	Currency    string         `gorm:"default:'PHP'" json:"currency"`
}

// Application links a candidate to a job. Status is free text set by recruiters;
// services.PipelineStage maps it onto the fixed stage list.
type Application struct {
	Base
	JobID       string `gorm:"type:uuid;index;not null" json:"jobId"`
	CandidateID string `gorm:"type:uuid;index;not null" json:"candidateId"`
	RecruiterID string `gorm:"type:uuid;index" json:"recruiterId"`
	Status      string `gorm:"default:'submitted'" json:"status"`
}
