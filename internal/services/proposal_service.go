package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bpoc/internal/daily"
	"bpoc/internal/models"
	"bpoc/internal/repositories"

	"go.uber.org/zap"
)

const maxProposedSlots = 3

type RespondAction string

const (
	ActionAccept         RespondAction = "accept"
	ActionCounterPropose RespondAction = "counter_propose"
	ActionReject         RespondAction = "reject"
)

type ProposeInput struct {
	ApplicationID   string
	CandidateID     string
	InterviewType   string
	DurationMinutes int
	Slots           []models.TimeSlot
	Notes           string
}

type ProposeResult struct {
	Proposal  *models.InterviewProposal `json:"proposal"`
	Interview *models.Interview         `json:"interview"`
}

type RespondInput struct {
	ProposalID      string
	Action          RespondAction
	AcceptedTime    *models.TimeSlot
	AlternativeTime *models.TimeSlot
	Message         string
}

type RespondResult struct {
	Proposal  *models.InterviewProposal    `json:"proposal"`
	Response  *models.TimeProposalResponse `json:"response"`
	Interview *models.Interview            `json:"interview,omitempty"`
	Room      *models.VideoCallRoom        `json:"room,omitempty"`
}

// ProposalService runs the interview time negotiation between a recruiter
// and a candidate.
type ProposalService struct {
	store    *repositories.Store
	video    VideoProvider
	notifier Notifier
	names    *NameResolver
	logger   *zap.Logger
	now      Clock
	suffix   func() string
}

func NewProposalService(store *repositories.Store, video VideoProvider, notifier Notifier, logger *zap.Logger) *ProposalService {
	return &ProposalService{
		store:    store,
		video:    video,
		notifier: notifier,
		names:    NewNameResolver(store),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		suffix:   newRoomSuffix,
	}
}

// Propose offers up to three slots for an application's next interview.
// Whether the slots are far enough ahead is checked by the client.
func (s *ProposalService) Propose(ctx context.Context, recruiterID string, in ProposeInput) (*ProposeResult, error) {
	if strings.TrimSpace(in.ApplicationID) == "" {
		return nil, validationf("applicationId is required")
	}
	if strings.TrimSpace(in.InterviewType) == "" {
		return nil, validationf("interviewType is required")
	}
	if len(in.Slots) == 0 || len(in.Slots) > maxProposedSlots {
		return nil, validationf("between 1 and %d proposed times are required", maxProposedSlots)
	}
	for i, slot := range in.Slots {
		if _, err := slot.Instant(); err != nil {
			return nil, validationf("proposed time %d: %v", i+1, err)
		}
	}
	if in.DurationMinutes == 0 {
		in.DurationMinutes = 30
	}
	if in.DurationMinutes < 0 || in.DurationMinutes > 480 {
		return nil, validationf("durationMinutes must be between 1 and 480")
	}

	app, err := s.store.Applications.GetByID(ctx, in.ApplicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	if in.CandidateID != "" && in.CandidateID != app.CandidateID {
		return nil, validationf("candidateId does not match the application")
	}
	recruiter, err := s.store.Recruiters.GetByUserID(ctx, recruiterID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, forbidden("only recruiters can propose interview times")
		}
		return nil, err
	}
	if app.RecruiterID != recruiterID {
		job, err := s.store.Jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return nil, notFoundOr(err, "job not found")
		}
		if recruiter.AgencyID != job.AgencyID {
			return nil, forbidden("only the agency's recruiters can propose interview times")
		}
	}

	result := &ProposeResult{}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		interview, err := tx.Interviews.FindUnscheduled(ctx, app.ID)
		if errors.Is(err, repositories.ErrInterviewNotFound) {
			interview = &models.Interview{
				ApplicationID:   app.ID,
				InterviewType:   in.InterviewType,
				DurationMinutes: in.DurationMinutes,
				Status:          models.InterviewUnscheduled,
			}
			err = tx.Interviews.Create(ctx, interview)
		}
		if err != nil {
			return fmt.Errorf("prepare interview: %w", err)
		}

		proposal := &models.InterviewProposal{
			InterviewID:   interview.ID,
			ProposedBy:    recruiterID,
			ProposedTimes: in.Slots,
			Notes:         in.Notes,
			Status:        models.ProposalPending,
		}
		if err := tx.Interviews.CreateProposal(ctx, proposal); err != nil {
			return fmt.Errorf("create proposal: %w", err)
		}
		result.Interview, result.Proposal = interview, proposal
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		RecipientID:   app.CandidateID,
		RecipientType: models.RoleCandidate,
		Type:          models.NotificationInterviewProposal,
		Title:         "New interview times proposed",
		Message:       fmt.Sprintf("%s proposed %d time(s) for your %s interview.", displayOr(recruiter.FullName(), "Your recruiter"), len(in.Slots), humanize(in.InterviewType)),
		ActionURL:     "/candidate/interviews?proposal=" + result.Proposal.ID,
	})
	return result, nil
}

// Respond applies the candidate's decision to a pending proposal.
func (s *ProposalService) Respond(ctx context.Context, candidateID string, in RespondInput) (*RespondResult, error) {
	switch in.Action {
	case ActionAccept, ActionCounterPropose, ActionReject:
	default:
		return nil, validationf("action must be one of accept, counter_propose, reject")
	}
	if strings.TrimSpace(in.ProposalID) == "" {
		return nil, validationf("proposalId is required")
	}

	proposal, err := s.store.Interviews.GetProposal(ctx, in.ProposalID)
	if err != nil {
		return nil, notFoundOr(err, "proposal not found")
	}
	interview, err := s.store.Interviews.GetByID(ctx, proposal.InterviewID)
	if err != nil {
		return nil, notFoundOr(err, "interview not found")
	}
	app, err := s.store.Applications.GetByID(ctx, interview.ApplicationID)
	if err != nil {
		return nil, notFoundOr(err, "application not found")
	}
	if app.CandidateID != candidateID {
		return nil, forbidden("you can only respond to your own interview proposals")
	}
	if proposal.Status != models.ProposalPending {
		return nil, conflict("proposal is no longer pending", nil)
	}

	switch in.Action {
	case ActionAccept:
		return s.accept(ctx, proposal, interview, app, in)
	case ActionCounterPropose:
		return s.counterPropose(ctx, proposal, app, in)
	default:
		return s.reject(ctx, proposal, app, in)
	}
}

func (s *ProposalService) accept(ctx context.Context, proposal *models.InterviewProposal, interview *models.Interview, app *models.Application, in RespondInput) (*RespondResult, error) {
	if in.AcceptedTime == nil {
		return nil, validationf("acceptedTime is required to accept")
	}
	at, err := in.AcceptedTime.Instant()
	if err != nil {
		return nil, validationf("acceptedTime: %v", err)
	}
	if !proposedSlotMatches(proposal.ProposedTimes, at) {
		return nil, validationf("acceptedTime must be one of the proposed times")
	}
	if at.Before(s.now().Add(minLeadTime)) {
		return nil, validationf("accepted time must be at least 2 hours in the future")
	}

	firstName := ""
	if name, ok := s.names.Resolve(ctx, app.CandidateID); ok {
		firstName = name.First()
	}
	roomName := buildRoomName(interview.InterviewType, firstName, at, s.suffix())
	expires := at.Add(scheduledRoomTTL)

	provisioned, err := s.video.CreateRoom(ctx, daily.CreateRoomRequest{
		Name:       roomName,
		Privacy:    "private",
		Properties: roomProperties(expires),
	})
	if err != nil {
		return nil, upstream("failed to create video room", err)
	}

	var agencyID *string
	if recruiter, err := s.store.Recruiters.GetByUserID(ctx, proposal.ProposedBy); err == nil {
		agencyID = &recruiter.AgencyID
	}

	result := &RespondResult{}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Interviews.DecideProposal(ctx, proposal.ID, models.ProposalAccepted); err != nil {
			return err
		}
		if err := tx.Interviews.MarkScheduled(ctx, interview.ID, at, provisioned.Name, provisioned.URL); err != nil {
			return fmt.Errorf("schedule interview: %w", err)
		}

		accepted := *in.AcceptedTime
		response := &models.TimeProposalResponse{
			ProposalID:    proposal.ID,
			ResponderID:   app.CandidateID,
			Status:        models.ResponseAccepted,
			AcceptedTime:  &accepted,
			ResponseNotes: in.Message,
		}
		if err := tx.Interviews.CreateResponse(ctx, response); err != nil {
			return fmt.Errorf("record response: %w", err)
		}

		interviewID := interview.ID
		room := &models.VideoCallRoom{
			HostUserID:        proposal.ProposedBy,
			ParticipantUserID: app.CandidateID,
			AgencyID:          agencyID,
			InterviewID:       &interviewID,
			DailyRoomName:     provisioned.Name,
			DailyRoomURL:      provisioned.URL,
			CallType:          interview.InterviewType,
			Title:             humanize(interview.InterviewType) + " interview",
			Status:            models.RoomCreated,
			ExpiresAt:         &expires,
		}
		if err := tx.Rooms.Create(ctx, room); err != nil {
			return fmt.Errorf("persist room: %w", err)
		}
		if err := tx.Rooms.CreateInvitation(ctx, &models.VideoCallInvitation{
			RoomID: room.ID, InviterID: proposal.ProposedBy, InviteeID: app.CandidateID, Status: models.InvitationPending,
		}); err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}
		result.Response, result.Room = response, room
		return nil
	})
	if err != nil {
		s.releaseRoom(ctx, provisioned.Name)
		if errors.Is(err, repositories.ErrProposalNotPending) {
			return nil, conflict("proposal is no longer pending", err)
		}
		return nil, err
	}

	if result.Proposal, err = s.store.Interviews.GetProposal(ctx, proposal.ID); err != nil {
		return nil, err
	}
	if result.Interview, err = s.store.Interviews.GetByID(ctx, interview.ID); err != nil {
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		RecipientID:   proposal.ProposedBy,
		RecipientType: models.RoleRecruiter,
		Type:          models.NotificationInterviewScheduled,
		Title:         "Interview scheduled",
		Message:       fmt.Sprintf("The candidate accepted %s UTC.", at.Format("Mon 2 Jan 2006 15:04")),
		ActionURL:     "/recruiter/interviews/" + interview.ID,
	})
	return result, nil
}

func (s *ProposalService) counterPropose(ctx context.Context, proposal *models.InterviewProposal, app *models.Application, in RespondInput) (*RespondResult, error) {
	if in.AlternativeTime == nil {
		return nil, validationf("alternativeTime is required to counter-propose")
	}
	at, err := in.AlternativeTime.Instant()
	if err != nil {
		return nil, validationf("alternativeTime: %v", err)
	}
	if at.Before(s.now().Add(minLeadTime)) {
		return nil, validationf("alternative time must be at least 2 hours in the future")
	}

	response := &models.TimeProposalResponse{
		ProposalID:       proposal.ID,
		ResponderID:      app.CandidateID,
		Status:           models.ResponseCounterProposed,
		AlternativeTimes: []models.TimeSlot{*in.AlternativeTime},
		ResponseNotes:    in.Message,
	}
	if err := s.store.Interviews.CreateResponse(ctx, response); err != nil {
		return nil, fmt.Errorf("record response: %w", err)
	}

	s.notify(ctx, &models.Notification{
		RecipientID:   proposal.ProposedBy,
		RecipientType: models.RoleRecruiter,
		Type:          models.NotificationInterviewCounterProposal,
		Title:         "Candidate suggested another time",
		Message:       fmt.Sprintf("The candidate asked for %s UTC instead.", at.Format("Mon 2 Jan 2006 15:04")),
		ActionURL:     "/recruiter/proposals/" + proposal.ID,
		IsUrgent:      true,
	})
	return &RespondResult{Proposal: proposal, Response: response}, nil
}

func (s *ProposalService) reject(ctx context.Context, proposal *models.InterviewProposal, app *models.Application, in RespondInput) (*RespondResult, error) {
	response := &models.TimeProposalResponse{
		ProposalID:    proposal.ID,
		ResponderID:   app.CandidateID,
		Status:        models.ResponseRejected,
		ResponseNotes: in.Message,
	}
	err := s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Interviews.DecideProposal(ctx, proposal.ID, models.ProposalRejected); err != nil {
			return err
		}
		return tx.Interviews.CreateResponse(ctx, response)
	})
	if errors.Is(err, repositories.ErrProposalNotPending) {
		return nil, conflict("proposal is no longer pending", err)
	}
	if err != nil {
		return nil, fmt.Errorf("reject proposal: %w", err)
	}
	proposal.Status = models.ProposalRejected

	s.notify(ctx, &models.Notification{
		RecipientID:   proposal.ProposedBy,
		RecipientType: models.RoleRecruiter,
		Type:          models.NotificationInterviewRejected,
		Title:         "Interview times declined",
		Message:       "The candidate declined the proposed interview times.",
		ActionURL:     "/recruiter/proposals/" + proposal.ID,
	})
	return &RespondResult{Proposal: proposal, Response: response}, nil
}

// Responses lists every response recorded against a proposal, oldest first.
// Only the candidate, the proposing recruiter, the job's agency and admins
// may read them.
func (s *ProposalService) Responses(ctx context.Context, caller Caller, proposalID string) ([]models.TimeProposalResponse, error) {
	proposal, err := s.store.Interviews.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, notFoundOr(err, "proposal not found")
	}
	if err := s.authorizeProposalReader(ctx, caller, proposal); err != nil {
		return nil, err
	}
	return s.store.Interviews.ListResponses(ctx, proposalID)
}

func (s *ProposalService) authorizeProposalReader(ctx context.Context, caller Caller, proposal *models.InterviewProposal) error {
	if caller.Role == models.RoleAdmin || proposal.ProposedBy == caller.UserID {
		return nil
	}
	interview, err := s.store.Interviews.GetByID(ctx, proposal.InterviewID)
	if err != nil {
		return notFoundOr(err, "interview not found")
	}
	app, err := s.store.Applications.GetByID(ctx, interview.ApplicationID)
	if err != nil {
		return notFoundOr(err, "application not found")
	}
	if app.CandidateID == caller.UserID || app.RecruiterID == caller.UserID {
		return nil
	}
	if caller.Role == models.RoleRecruiter {
		job, err := s.store.Jobs.GetByID(ctx, app.JobID)
		if err != nil {
			return notFoundOr(err, "job not found")
		}
		member, err := s.store.Recruiters.IsAgencyMember(ctx, caller.UserID, job.AgencyID)
		if err != nil {
			return fmt.Errorf("check agency membership: %w", err)
		}
		if member {
			return nil
		}
	}
	return forbidden("you cannot view responses to this proposal")
}

func (s *ProposalService) releaseRoom(ctx context.Context, name string) {
	if err := s.video.DeleteRoom(ctx, name); err != nil {
		s.logger.Warn("failed to release orphaned video room", zap.String("room", name), zap.Error(err))
	}
}

func (s *ProposalService) notify(ctx context.Context, n *models.Notification) {
	notifyBestEffort(ctx, s.notifier, s.logger, n)
}

func proposedSlotMatches(slots []models.TimeSlot, at time.Time) bool {
	for _, slot := range slots {
		if t, err := slot.Instant(); err == nil && t.Equal(at) {
			return true
		}
	}
	return false
}

func roomProperties(expires time.Time) daily.RoomProperties {
	return daily.RoomProperties{
		Exp:               expires.Unix(),
		EnableChat:        true,
		EnableScreenshare: true,
		EnablePrejoinUI:   true,
		EjectAtRoomExp:    true,
		MaxParticipants:   4,
	}
}

func humanize(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func displayOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
