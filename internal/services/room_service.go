package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"bpoc/internal/daily"
	"bpoc/internal/models"
	"bpoc/internal/repositories"

	"go.uber.org/zap"
)

const defaultMissedCallAfter = 60 * time.Second

type CreateRoomInput struct {
	ParticipantUserID string
	InterviewID       *string
	CallType          string
	Title             string
	ScheduledAt       *time.Time
	// AgencyHosted hosts the room as the caller's agency so any recruiter of
	// that agency can manage it.
	AgencyHosted bool
}

type UpdateRoomInput struct {
	Status    *models.RoomStatus
	StartedAt *time.Time
	EndedAt   *time.Time
	Notes     *string
	Rating    *float64
	Outcome   *string
}

type RoomView struct {
	Room         *models.VideoCallRoom         `json:"room"`
	Participants []models.VideoCallParticipant `json:"participants"`
	Presence     *daily.Presence               `json:"presence,omitempty"`
}

// ProviderRelease captures the outcome of the best-effort provider cleanup.
type ProviderRelease struct {
	Room string
	Err  error
}

func (r ProviderRelease) Released() bool { return r.Err == nil }

type EndResult struct {
	Room                 *models.VideoCallRoom `json:"room"`
	InvitationsCancelled int64                 `json:"invitationsCancelled"`
	ProviderReleased     bool                  `json:"providerReleased"`
}

type RoomService struct {
	store           *repositories.Store
	video           VideoProvider
	notifier        Notifier
	names           *NameResolver
	logger          *zap.Logger
	now             Clock
	suffix          func() string
	missedCallAfter time.Duration
}

func NewRoomService(store *repositories.Store, video VideoProvider, notifier Notifier, logger *zap.Logger) *RoomService {
	return &RoomService{
		store:           store,
		video:           video,
		notifier:        notifier,
		names:           NewNameResolver(store),
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC() },
		suffix:          newRoomSuffix,
		missedCallAfter: defaultMissedCallAfter,
	}
}

// SetMissedCallAfter overrides how long a waiting room may stay empty.
func (s *RoomService) SetMissedCallAfter(d time.Duration) {
	if d > 0 {
		s.missedCallAfter = d
	}
}

// Create provisions an ad hoc or scheduled call and invites the participant.
func (s *RoomService) Create(ctx context.Context, callerID string, in CreateRoomInput) (*models.VideoCallRoom, error) {
	if strings.TrimSpace(in.ParticipantUserID) == "" {
		return nil, validationf("participantUserId is required")
	}
	if in.ParticipantUserID == callerID {
		return nil, validationf("participant must be someone other than the host")
	}
	callType := strings.TrimSpace(in.CallType)
	if callType == "" {
		callType = "call"
	}

	hostID := callerID
	var agencyID *string
	if in.AgencyHosted {
		recruiter, err := s.store.Recruiters.GetByUserID(ctx, callerID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, forbidden("only agency recruiters can host agency calls")
			}
			return nil, err
		}
		hostID = recruiter.AgencyID
		agencyID = &recruiter.AgencyID
	}

	now := s.now()
	start, expires := now, now.Add(adHocRoomTTL)
	if in.ScheduledAt != nil {
		start, expires = in.ScheduledAt.UTC(), in.ScheduledAt.UTC().Add(scheduledRoomTTL)
		if !expires.After(now) {
			return nil, validationf("scheduledAt is too far in the past")
		}
	}

	firstName := ""
	if name, ok := s.names.Resolve(ctx, in.ParticipantUserID); ok {
		firstName = name.First()
	}
	provisioned, err := s.video.CreateRoom(ctx, daily.CreateRoomRequest{
		Name:       buildRoomName(callType, firstName, start, s.suffix()),
		Privacy:    "private",
		Properties: roomProperties(expires),
	})
	if err != nil {
		return nil, upstream("failed to create video room", err)
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = humanize(callType)
	}
	room := &models.VideoCallRoom{
		HostUserID:        hostID,
		ParticipantUserID: in.ParticipantUserID,
		AgencyID:          agencyID,
		InterviewID:       in.InterviewID,
		DailyRoomName:     provisioned.Name,
		DailyRoomURL:      provisioned.URL,
		CallType:          callType,
		Title:             title,
		Status:            models.RoomCreated,
		ExpiresAt:         &expires,
	}
	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.Rooms.Create(ctx, room); err != nil {
			return fmt.Errorf("persist room: %w", err)
		}
		return tx.Rooms.CreateInvitation(ctx, &models.VideoCallInvitation{
			RoomID: room.ID, InviterID: callerID, InviteeID: in.ParticipantUserID, Status: models.InvitationPending,
		})
	})
	if err != nil {
		if rel := s.releaseProviderRoom(ctx, provisioned.Name); !rel.Released() {
			s.logger.Warn("failed to release orphaned video room", zap.String("room", rel.Room), zap.Error(rel.Err))
		}
		return nil, err
	}

	s.notify(ctx, &models.Notification{
		RecipientID:   in.ParticipantUserID,
		RecipientType: models.RoleCandidate,
		Type:          models.NotificationVideoCallInvitation,
		Title:         "You have been invited to a call",
		Message:       title,
		ActionURL:     "/calls/" + room.ID,
	})
	return room, nil
}

// Get returns the room with live presence while the call may be running.
func (s *RoomService) Get(ctx context.Context, callerID, roomID string) (*RoomView, error) {
	room, err := s.store.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, notFoundOr(err, "room not found")
	}
	isHost, err := s.isHost(ctx, callerID, room)
	if err != nil {
		return nil, err
	}
	if !isHost && room.ParticipantUserID != callerID {
		return nil, forbidden("you do not have access to this room")
	}

	participants, err := s.store.Rooms.ListParticipants(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	view := &RoomView{Room: room, Participants: participants}
	if room.Status.Live() {
		presence, err := s.video.GetPresence(ctx, room.DailyRoomName)
		if err != nil {
			s.logger.Warn("presence lookup failed", zap.String("room", room.DailyRoomName), zap.Error(err))
		} else {
			view.Presence = presence
		}
	}
	return view, nil
}

// Update changes host-controlled fields. Status only moves forward; ended and
// failed rooms keep their status. Moving to ended backfills participants.
func (s *RoomService) Update(ctx context.Context, callerID, roomID string, in UpdateRoomInput) (*models.VideoCallRoom, error) {
	if in.Rating != nil {
		r := *in.Rating
		if r != math.Trunc(r) || r < 1 || r > 5 {
			return nil, validationf("rating must be an integer between 1 and 5")
		}
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, validationf("invalid status %q", *in.Status)
	}

	room, err := s.hostRoom(ctx, callerID, roomID)
	if err != nil {
		return nil, err
	}
	if in.Status != nil && !room.Status.CanTransition(*in.Status) {
		return nil, conflict(fmt.Sprintf("room cannot move from %s to %s", room.Status, *in.Status), nil)
	}

	now := s.now()
	updates := map[string]any{}
	if in.Status != nil {
		updates["status"] = *in.Status
	}
	startedAt := room.StartedAt
	if in.StartedAt != nil {
		startedAt = in.StartedAt
		updates["started_at"] = in.StartedAt.UTC()
	} else if in.Status != nil && *in.Status == models.RoomActive && room.StartedAt == nil {
		startedAt = &now
		updates["started_at"] = now
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.Outcome != nil {
		updates["outcome"] = *in.Outcome
	}
	if in.Rating != nil {
		updates["rating"] = int(*in.Rating)
	}

	endingNow := in.Status != nil && *in.Status == models.RoomEnded && room.Status != models.RoomEnded
	if endingNow || in.EndedAt != nil {
		end := now
		if in.EndedAt != nil {
			end = in.EndedAt.UTC()
		}
		updates["ended_at"] = end
		if d, ok := durationSeconds(startedAt, end); ok {
			updates["duration_seconds"] = d
		}
	}

	updated, err := s.store.Rooms.Update(ctx, room.ID, updates)
	if err != nil {
		return nil, notFoundOr(err, "room not found")
	}
	if endingNow {
		s.backfillParticipants(ctx, updated, callerID)
	}
	return updated, nil
}

// End closes the call. The provider room is released best-effort; the
// outcome is reported, never returned as an error.
func (s *RoomService) End(ctx context.Context, callerID, roomID string) (*EndResult, error) {
	room, err := s.hostRoom(ctx, callerID, roomID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updates := map[string]any{"status": models.RoomEnded, "ended_at": now}
	if d, ok := durationSeconds(room.StartedAt, now); ok {
		updates["duration_seconds"] = d
	}
	ended, err := s.store.Rooms.Update(ctx, room.ID, updates)
	if err != nil {
		return nil, notFoundOr(err, "room not found")
	}
	s.backfillParticipants(ctx, ended, callerID)

	cancelled, err := s.store.Rooms.CancelPendingInvitations(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("cancel invitations: %w", err)
	}

	release := s.releaseProviderRoom(ctx, room.DailyRoomName)
	if !release.Released() {
		s.logger.Warn("video provider room not released",
			zap.String("roomId", room.ID),
			zap.String("room", release.Room),
			zap.Error(release.Err))
	}
	return &EndResult{Room: ended, InvitationsCancelled: cancelled, ProviderReleased: release.Released()}, nil
}

// SweepMissedCalls fails waiting rooms nobody joined within the grace period
// and returns how many were failed.
func (s *RoomService) SweepMissedCalls(ctx context.Context, now time.Time) (int, error) {
	rooms, err := s.store.Rooms.ListMissed(ctx, now.Add(-s.missedCallAfter))
	if err != nil {
		return 0, fmt.Errorf("list missed calls: %w", err)
	}

	failed := 0
	for i := range rooms {
		room := &rooms[i]
		ok, err := s.store.Rooms.MarkFailed(ctx, room.ID, now)
		if err != nil {
			s.logger.Error("mark room failed", zap.String("roomId", room.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		failed++
		if _, err := s.store.Rooms.CancelPendingInvitations(ctx, room.ID); err != nil {
			s.logger.Warn("cancel invitations for missed call", zap.String("roomId", room.ID), zap.Error(err))
		}
		if rel := s.releaseProviderRoom(ctx, room.DailyRoomName); !rel.Released() {
			s.logger.Warn("video provider room not released", zap.String("room", rel.Room), zap.Error(rel.Err))
		}
		for _, recipient := range s.hostRecipients(ctx, room) {
			s.notify(ctx, &models.Notification{
				RecipientID:   recipient,
				RecipientType: models.RoleRecruiter,
				Type:          models.NotificationMissedCall,
				Title:         "Missed call",
				Message:       fmt.Sprintf("Nobody joined %q.", room.Title),
				ActionURL:     "/calls/" + room.ID,
			})
		}
	}
	return failed, nil
}

func (s *RoomService) hostRoom(ctx context.Context, callerID, roomID string) (*models.VideoCallRoom, error) {
	room, err := s.store.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, notFoundOr(err, "room not found")
	}
	isHost, err := s.isHost(ctx, callerID, room)
	if err != nil {
		return nil, err
	}
	if !isHost {
		return nil, forbidden("only the host can manage this room")
	}
	return room, nil
}

func agencyHosted(room *models.VideoCallRoom) bool {
	return room.AgencyID != nil && *room.AgencyID == room.HostUserID
}

// hostRecipients is the host user, or every recruiter of the hosting agency.
func (s *RoomService) hostRecipients(ctx context.Context, room *models.VideoCallRoom) []string {
	if !agencyHosted(room) {
		return []string{room.HostUserID}
	}
	recruiters, err := s.store.Recruiters.ListByAgency(ctx, *room.AgencyID)
	if err != nil {
		s.logger.Warn("list agency recruiters", zap.String("agencyId", *room.AgencyID), zap.Error(err))
		return nil
	}
	ids := make([]string, 0, len(recruiters))
	for _, r := range recruiters {
		ids = append(ids, r.UserID)
	}
	return ids
}

// isHost covers direct hosts and recruiters of an agency hosting the room.
func (s *RoomService) isHost(ctx context.Context, callerID string, room *models.VideoCallRoom) (bool, error) {
	if callerID == "" {
		return false, nil
	}
	if room.HostUserID == callerID {
		return true, nil
	}
	if !agencyHosted(room) {
		return false, nil
	}
	member, err := s.store.Recruiters.IsAgencyMember(ctx, callerID, *room.AgencyID)
	if err != nil {
		return false, fmt.Errorf("check agency membership: %w", err)
	}
	return member, nil
}

// backfillParticipants reconciles rooms that ended without participant rows.
// On agency-hosted rooms the recruiter who ended the call stands in as host.
// Failures are logged only.
func (s *RoomService) backfillParticipants(ctx context.Context, room *models.VideoCallRoom, actorID string) {
	count, err := s.store.Rooms.CountParticipants(ctx, room.ID)
	if err != nil {
		s.logger.Warn("participant backfill: count failed", zap.String("roomId", room.ID), zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	now := s.now()
	joined, left := now, now
	if room.StartedAt != nil {
		joined = room.StartedAt.UTC()
	}
	if room.EndedAt != nil {
		left = room.EndedAt.UTC()
	}
	duration, _ := durationSeconds(&joined, left)

	hostID := room.HostUserID
	if agencyHosted(room) && actorID != "" {
		hostID = actorID
	}

	rows := make([]models.VideoCallParticipant, 0, 2)
	for _, p := range []struct {
		userID string
		role   models.ParticipantRole
	}{
		{hostID, models.ParticipantHost},
		{room.ParticipantUserID, models.ParticipantCandidate},
	} {
		name, _ := s.names.Resolve(ctx, p.userID)
		d := duration
		rows = append(rows, models.VideoCallParticipant{
			RoomID:          room.ID,
			UserID:          p.userID,
			Name:            name.Value,
			Role:            p.role,
			Status:          "left",
			JoinedAt:        &joined,
			LeftAt:          &left,
			DurationSeconds: &d,
		})
	}

	err = s.store.Rooms.CreateParticipants(ctx, rows, false)
	if err == nil {
		return
	}
	s.logger.Warn("participant backfill: full insert failed, retrying minimal", zap.String("roomId", room.ID), zap.Error(err))
	for i := range rows {
		rows[i].ID = ""
	}
	if err := s.store.Rooms.CreateParticipants(ctx, rows, true); err != nil {
		s.logger.Error("participant backfill failed", zap.String("roomId", room.ID), zap.Error(err))
	}
}

func (s *RoomService) releaseProviderRoom(ctx context.Context, name string) ProviderRelease {
	err := s.video.DeleteRoom(ctx, name)
	var apiErr *daily.APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		err = nil
	}
	return ProviderRelease{Room: name, Err: err}
}

func (s *RoomService) notify(ctx context.Context, n *models.Notification) {
	notifyBestEffort(ctx, s.notifier, s.logger, n)
}

func durationSeconds(start *time.Time, end time.Time) (int, bool) {
	if start == nil {
		return 0, false
	}
	d := int(end.Sub(*start).Seconds())
	if d < 0 {
		d = 0
	}
	return d, true
}
