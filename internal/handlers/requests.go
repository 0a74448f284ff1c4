package handlers

import (
	"errors"
	"strings"
	"time"

	"bpoc/internal/models"
	"bpoc/internal/services"
)

type ProposeRequest struct {
	ApplicationID   string            `json:"applicationId"`
	CandidateID     string            `json:"candidateId"`
	InterviewType   string            `json:"interviewType"`
	DurationMinutes int               `json:"duration"`
	ProposedTimes   []models.TimeSlot `json:"proposedTimes"`
	Notes           string            `json:"notes"`
}

func (r *ProposeRequest) Validate() error {
	if strings.TrimSpace(r.ApplicationID) == "" {
		return errors.New("applicationId is required")
	}
	if len(r.ProposedTimes) == 0 {
		return errors.New("at least one proposed time is required")
	}
	return nil
}

type RespondRequest struct {
	ProposalID      string           `json:"proposalId"`
	Action          string           `json:"action"`
	AcceptedTime    *models.TimeSlot `json:"acceptedTime,omitempty"`
	AlternativeTime *models.TimeSlot `json:"alternativeTime,omitempty"`
	Message         string           `json:"message"`
}

func (r *RespondRequest) Validate() error {
	if strings.TrimSpace(r.ProposalID) == "" {
		return errors.New("proposalId is required")
	}
	switch services.RespondAction(r.Action) {
	case services.ActionAccept, services.ActionCounterPropose, services.ActionReject:
		return nil
	}
	return errors.New("action must be accept, counter_propose or reject")
}

type CreateRoomRequest struct {
	ParticipantUserID string     `json:"participantUserId"`
	InterviewID       *string    `json:"interviewId,omitempty"`
	CallType          string     `json:"callType"`
	Title             string     `json:"title"`
	ScheduledAt       *time.Time `json:"scheduledAt,omitempty"`
	AgencyHosted      bool       `json:"agencyHosted"`
}

func (r *CreateRoomRequest) Validate() error {
	if strings.TrimSpace(r.ParticipantUserID) == "" {
		return errors.New("participantUserId is required")
	}
	return nil
}

type UpdateRoomRequest struct {
	Status    *models.RoomStatus `json:"status,omitempty"`
	StartedAt *time.Time         `json:"startedAt,omitempty"`
	EndedAt   *time.Time         `json:"endedAt,omitempty"`
	Notes     *string            `json:"notes,omitempty"`
	Rating    *float64           `json:"rating,omitempty"`
	Outcome   *string            `json:"outcome,omitempty"`
}

func (r *UpdateRoomRequest) Validate() error { return nil }

type CreateJobRequest struct {
	ClientName  string           `json:"clientName"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Skills      []string         `json:"skills"`
	Status      models.JobStatus `json:"status"`
	SalaryMin   int              `json:"salaryMin"`
	SalaryMax   int              `json:"salaryMax"`
	Currency    string           `json:"currency"`
}

func (r *CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r *UpdateStatusRequest) Validate() error {
	if strings.TrimSpace(r.Status) == "" {
		return errors.New("status is required")
	}
	return nil
}

type CreateOfferRequest struct {
	ApplicationID string            `json:"applicationId"`
	TemplateKey   string            `json:"templateKey"`
	Salary        int               `json:"salary"`
	Currency      string            `json:"currency"`
	StartDate     *time.Time        `json:"startDate,omitempty"`
	Values        map[string]string `json:"values,omitempty"`
	RenderPDF     bool              `json:"renderPdf"`
}

func (r *CreateOfferRequest) Validate() error {
	if r.ApplicationID == "" || r.TemplateKey == "" {
		return errors.New("applicationId and templateKey are required")
	}
	return nil
}

type CreateCampaignRequest struct {
	Name       string                    `json:"name"`
	Subject    string                    `json:"subject"`
	Body       string                    `json:"body"`
	Recipients []services.RecipientInput `json:"recipients"`
}

func (r *CreateCampaignRequest) Validate() error {
	if len(r.Recipients) == 0 {
		return errors.New("at least one recipient is required")
	}
	return nil
}

type GenerateRequest struct {
	PromptKey   string            `json:"promptKey"`
	Variant     string            `json:"variant"`
	Variables   map[string]string `json:"variables"`
	SubjectType string            `json:"subjectType"`
	SubjectID   string            `json:"subjectId"`
}

func (r *GenerateRequest) Validate() error {
	if strings.TrimSpace(r.PromptKey) == "" {
		return errors.New("promptKey is required")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r *RegisterRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return errors.New("email and password are required")
	}
	return nil
}
