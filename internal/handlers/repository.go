package handlers

import (
	"context"

	"bpoc/internal/models"
	"bpoc/internal/repositories"
	"bpoc/internal/services"
)

// The interfaces below capture the service operations the handlers need.

type InterviewService interface {
	Propose(ctx context.Context, recruiterID string, in services.ProposeInput) (*services.ProposeResult, error)
	Respond(ctx context.Context, candidateID string, in services.RespondInput) (*services.RespondResult, error)
	Responses(ctx context.Context, caller services.Caller, proposalID string) ([]models.TimeProposalResponse, error)
}

type RoomService interface {
	Create(ctx context.Context, callerID string, in services.CreateRoomInput) (*models.VideoCallRoom, error)
	Get(ctx context.Context, callerID, roomID string) (*services.RoomView, error)
	Update(ctx context.Context, callerID, roomID string, in services.UpdateRoomInput) (*models.VideoCallRoom, error)
	End(ctx context.Context, callerID, roomID string) (*services.EndResult, error)
}

type DirectoryService interface {
	ListAgencies(ctx context.Context, caller services.Caller) ([]models.Agency, error)
	GetAgency(ctx context.Context, id string) (*models.Agency, error)
	SearchCandidates(ctx context.Context, filter repositories.CandidateFilter) ([]models.Candidate, error)
	GetCandidate(ctx context.Context, caller services.Caller, id string) (*models.Candidate, error)
	ListJobs(ctx context.Context, caller services.Caller, status string) ([]models.Job, error)
	CreateJob(ctx context.Context, caller services.Caller, in services.CreateJobInput) (*models.Job, error)
	Apply(ctx context.Context, caller services.Caller, jobID string) (*models.Application, error)
	AssignRecruiter(ctx context.Context, caller services.Caller, applicationID string) (*models.Application, error)
}

type PipelineService interface {
	Progress(ctx context.Context, applicationID string) (*services.Progress, error)
	UpdateStatus(ctx context.Context, callerID, applicationID, status string) (*models.Application, error)
}

type OfferService interface {
	Templates() map[string][]string
	Create(ctx context.Context, caller services.Caller, in services.CreateOfferInput) (*services.OfferResult, error)
	Get(ctx context.Context, caller services.Caller, id string) (*models.Offer, error)
}

type CampaignService interface {
	Create(ctx context.Context, caller services.Caller, in services.CreateCampaignInput) (*models.EmailCampaign, error)
	Get(ctx context.Context, id string) (*services.CampaignView, error)
	Send(ctx context.Context, id string) (*services.SendResult, error)
}

type ContentService interface {
	Templates() []string
	Generate(ctx context.Context, in services.GenerateInput) (*models.AIContent, error)
	Get(ctx context.Context, id string) (*models.AIContent, error)
	SummarizeResume(ctx context.Context, caller services.Caller, candidateID string, pdf []byte) (*services.ResumeResult, error)
}

type NotificationService interface {
	List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, recipientID string) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	RegisterCandidate(ctx context.Context, in services.RegisterInput) (*models.UserProfile, error)
	Me(ctx context.Context, userID string) (*models.UserProfile, error)
}
