package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"bpoc/internal/daily"
	"bpoc/internal/models"
	"bpoc/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createRoom(t *testing.T, e *env, svc *RoomService, agencyHosted bool) *models.VideoCallRoom {
	t.Helper()
	room, err := svc.Create(context.Background(), e.fixture.Recruiter.UserID, CreateRoomInput{
		ParticipantUserID: e.fixture.Candidate.ID,
		CallType:          "screening",
		AgencyHosted:      agencyHosted,
	})
	require.NoError(t, err)
	return room
}

func ptr[T any](v T) *T { return &v }

func TestCreateAdHocRoom(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()

	room := createRoom(t, e, svc, false)

	assert.Equal(t, "screening-maria-20250601-abc123", room.DailyRoomName)
	assert.Equal(t, models.RoomCreated, room.Status)
	assert.Equal(t, e.fixture.Recruiter.UserID, room.HostUserID)
	assert.Nil(t, room.AgencyID)
	assert.True(t, fixedNow.Add(2*time.Hour).Equal(*room.ExpiresAt))
	assert.Equal(t, fixedNow.Add(2*time.Hour).Unix(), e.video.created[0].Properties.Exp)

	invitations, err := e.store.Rooms.ListInvitations(context.Background(), room.ID)
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	assert.Equal(t, e.fixture.Candidate.ID, invitations[0].InviteeID)
	assert.Len(t, e.notifier.ofType(models.NotificationVideoCallInvitation), 1)
}

func TestCreateScheduledAgencyHostedRoom(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	at := fixedNow.Add(26 * time.Hour)

	room, err := svc.Create(context.Background(), e.fixture.Recruiter.UserID, CreateRoomInput{
		ParticipantUserID: e.fixture.Candidate.ID,
		CallType:          "client_interview",
		ScheduledAt:       &at,
		AgencyHosted:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, e.fixture.Agency.ID, room.HostUserID)
	assert.Equal(t, e.fixture.Agency.ID, *room.AgencyID)
	assert.True(t, at.Add(3*time.Hour).Equal(*room.ExpiresAt))
	assert.Equal(t, "client-interview-maria-20250602-abc123", room.DailyRoomName)
}

func TestCreateRoomFailures(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()

	_, err := svc.Create(context.Background(), e.fixture.Recruiter.UserID, CreateRoomInput{})
	requireKind(t, err, KindValidation)

	_, err = svc.Create(context.Background(), e.fixture.Candidate.ID, CreateRoomInput{ParticipantUserID: e.fixture.Recruiter.UserID, AgencyHosted: true})
	requireKind(t, err, KindForbidden)

	e.video.createFn = func(context.Context, daily.CreateRoomRequest) (*daily.Room, error) { return nil, errProvider }
	_, err = svc.Create(context.Background(), e.fixture.Recruiter.UserID, CreateRoomInput{ParticipantUserID: e.fixture.Candidate.ID})
	requireKind(t, err, KindUpstream)

	var count int64
	require.NoError(t, e.store.DB.Model(&models.VideoCallRoom{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetRoomAuthorization(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	direct := createRoom(t, e, svc, false)
	agencyRoom := createRoom(t, e, svc, true)
	ctx := context.Background()

	colleague := &models.Recruiter{UserID: "9b2f6a8e-0c1d-4e3f-8a7b-6c5d4e3f2a1b", AgencyID: e.fixture.Agency.ID, FirstName: "Lea"}
	require.NoError(t, e.store.Recruiters.Create(ctx, colleague))
	otherAgency := &models.Agency{Name: "Other", Slug: "other-agency", IsActive: true}
	require.NoError(t, e.store.Agencies.Create(ctx, otherAgency))
	outsider := &models.Recruiter{UserID: "1a2b3c4d-5e6f-4a5b-8c7d-9e0f1a2b3c4d", AgencyID: otherAgency.ID}
	require.NoError(t, e.store.Recruiters.Create(ctx, outsider))

	view, err := svc.Get(ctx, e.fixture.Recruiter.UserID, direct.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Presence)
	assert.Equal(t, 1, view.Presence.TotalCount)

	_, err = svc.Get(ctx, e.fixture.Candidate.ID, direct.ID)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, colleague.UserID, direct.ID)
	requireKind(t, err, KindForbidden)

	_, err = svc.Get(ctx, colleague.UserID, agencyRoom.ID)
	assert.NoError(t, err, "agency recruiters can see agency-hosted rooms")

	_, err = svc.Get(ctx, outsider.UserID, agencyRoom.ID)
	requireKind(t, err, KindForbidden)

	_, err = svc.Get(ctx, e.fixture.Candidate.ID, "00000000-0000-0000-0000-000000000000")
	requireKind(t, err, KindNotFound)
}

func TestGetRoomPresence(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)
	ctx := context.Background()

	e.video.presenceFn = func(context.Context, string) (*daily.Presence, error) { return nil, errProvider }
	view, err := svc.Get(ctx, e.fixture.Candidate.ID, room.ID)
	require.NoError(t, err, "presence failures are non-fatal")
	assert.Nil(t, view.Presence)

	_, err = svc.End(ctx, e.fixture.Recruiter.UserID, room.ID)
	require.NoError(t, err)
	calls := e.video.presence
	view, err = svc.Get(ctx, e.fixture.Candidate.ID, room.ID)
	require.NoError(t, err)
	assert.Nil(t, view.Presence)
	assert.Equal(t, calls, e.video.presence, "ended rooms do not query presence")
	assert.Len(t, view.Participants, 2)
}

func TestUpdateRoomRating(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)
	ctx := context.Background()

	for _, bad := range []float64{0, 6, 4.5, -1} {
		_, err := svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Rating: ptr(bad)})
		requireKind(t, err, KindValidation)
	}
	for r := 1; r <= 5; r++ {
		updated, err := svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Rating: ptr(float64(r))})
		require.NoError(t, err)
		assert.Equal(t, r, *updated.Rating)
	}
}

func TestUpdateRoomHostOnly(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)

	_, err := svc.Update(context.Background(), e.fixture.Candidate.ID, room.ID, UpdateRoomInput{Notes: ptr("sneaky")})
	requireKind(t, err, KindForbidden)

	_, err = svc.Update(context.Background(), e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Status: ptr(models.RoomStatus("paused"))})
	requireKind(t, err, KindValidation)
}

func TestUpdateRejectsBackwardStatus(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	ctx := context.Background()
	room := createRoom(t, e, svc, false)

	_, err := svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Status: ptr(models.RoomActive)})
	require.NoError(t, err)
	_, err = svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Status: ptr(models.RoomWaiting)})
	requireKind(t, err, KindConflict)

	ended, err := svc.End(ctx, e.fixture.Recruiter.UserID, room.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Status: ptr(models.RoomCreated)})
	requireKind(t, err, KindConflict)

	rated, err := svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Rating: ptr(4.0), Notes: ptr("good call")})
	require.NoError(t, err)
	assert.Equal(t, models.RoomEnded, rated.Status)
	assert.True(t, ended.Room.EndedAt.Equal(*rated.EndedAt))
}

func TestUpdateToEndedComputesDurationAndBackfills(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)
	ctx := context.Background()

	active, err := svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Status: ptr(models.RoomActive)})
	require.NoError(t, err)
	require.NotNil(t, active.StartedAt)
	assert.True(t, fixedNow.Equal(*active.StartedAt))

	endedAt := fixedNow.Add(25 * time.Minute)
	ended, err := svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{
		Status:  ptr(models.RoomEnded),
		EndedAt: &endedAt,
		Outcome: ptr("advance"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoomEnded, ended.Status)
	assert.Equal(t, 1500, *ended.DurationSeconds)
	assert.Equal(t, "advance", *ended.Outcome)

	participants, err := e.store.Rooms.ListParticipants(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	byRole := map[models.ParticipantRole]models.VideoCallParticipant{}
	for _, p := range participants {
		byRole[p.Role] = p
	}
	assert.Equal(t, "Jon Reyes", byRole[models.ParticipantHost].Name)
	assert.Equal(t, "Maria Santos", byRole[models.ParticipantCandidate].Name)
	assert.True(t, endedAt.Equal(*byRole[models.ParticipantCandidate].LeftAt))
	assert.True(t, fixedNow.Equal(*byRole[models.ParticipantHost].JoinedAt))
	assert.Equal(t, 1500, *byRole[models.ParticipantHost].DurationSeconds)

	// A second transition request must not add more rows.
	_, err = svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Status: ptr(models.RoomEnded)})
	require.NoError(t, err)
	n, _ := e.store.Rooms.CountParticipants(ctx, room.ID)
	assert.EqualValues(t, 2, n)
}

func TestUpdateEndedAtWithoutStatusKeepsStatus(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)
	ctx := context.Background()
	started := fixedNow.Add(-10 * time.Minute)

	updated, err := svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{StartedAt: &started, EndedAt: &fixedNow})
	require.NoError(t, err)
	assert.Equal(t, models.RoomCreated, updated.Status)
	assert.Equal(t, 600, *updated.DurationSeconds)

	n, _ := e.store.Rooms.CountParticipants(ctx, room.ID)
	assert.Zero(t, n)
}

func TestEndRoom(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)
	ctx := context.Background()
	started := fixedNow.Add(-5 * time.Minute)
	_, err := svc.Update(ctx, e.fixture.Recruiter.UserID, room.ID, UpdateRoomInput{Status: ptr(models.RoomActive), StartedAt: &started})
	require.NoError(t, err)

	res, err := svc.End(ctx, e.fixture.Recruiter.UserID, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomEnded, res.Room.Status)
	assert.Equal(t, 300, *res.Room.DurationSeconds)
	assert.EqualValues(t, 1, res.InvitationsCancelled)
	assert.True(t, res.ProviderReleased)
	assert.Equal(t, []string{room.DailyRoomName}, e.video.deleted)

	participants, _ := e.store.Rooms.ListParticipants(ctx, room.ID)
	require.Len(t, participants, 2)
	for _, p := range participants {
		assert.True(t, fixedNow.Equal(*p.LeftAt))
	}
}

func TestEndRoomProviderFailureIsNonFatal(t *testing.T) {
	t.Run("provider error", func(t *testing.T) {
		e := newEnv(t)
		svc := e.roomService()
		room := createRoom(t, e, svc, false)

		e.video.deleteFn = func(context.Context, string) error { return errProvider }
		res, err := svc.End(context.Background(), e.fixture.Recruiter.UserID, room.ID)
		require.NoError(t, err)
		assert.False(t, res.ProviderReleased)
		assert.Equal(t, models.RoomEnded, res.Room.Status)
		assert.Nil(t, res.Room.DurationSeconds, "never started")
	})

	t.Run("already gone", func(t *testing.T) {
		e := newEnv(t)
		svc := e.roomService()
		room := createRoom(t, e, svc, false)

		e.video.deleteFn = func(context.Context, string) error {
			return &daily.APIError{StatusCode: http.StatusNotFound, Body: "gone"}
		}
		res, err := svc.End(context.Background(), e.fixture.Recruiter.UserID, room.ID)
		require.NoError(t, err)
		assert.True(t, res.ProviderReleased, "a room the provider already dropped counts as released")
	})
}

func TestEnvDatabasesAreIsolated(t *testing.T) {
	first := newEnv(t)
	second := newEnv(t)
	createRoom(t, first, first.roomService(), false)
	createRoom(t, second, second.roomService(), false)

	var count int64
	require.NoError(t, second.store.DB.Model(&models.VideoCallRoom{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEndRoomGuards(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)

	_, err := svc.End(context.Background(), e.fixture.Candidate.ID, room.ID)
	requireKind(t, err, KindForbidden)
	_, err = svc.End(context.Background(), e.fixture.Recruiter.UserID, "00000000-0000-0000-0000-000000000000")
	requireKind(t, err, KindNotFound)
}

func TestEndRoomKeepsExistingParticipants(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)
	ctx := context.Background()
	require.NoError(t, e.store.Rooms.CreateParticipants(ctx, []models.VideoCallParticipant{
		{RoomID: room.ID, UserID: e.fixture.Candidate.ID, Role: models.ParticipantCandidate, Name: "Maria"},
	}, false))

	_, err := svc.End(ctx, e.fixture.Recruiter.UserID, room.ID)
	require.NoError(t, err)
	n, _ := e.store.Rooms.CountParticipants(ctx, room.ID)
	assert.EqualValues(t, 1, n)
}

func TestBackfillFallsBackToMinimalInsert(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)
	ctx := context.Background()
	require.NoError(t, e.store.DB.Migrator().DropColumn(&models.VideoCallParticipant{}, "duration_seconds"))

	_, err := svc.End(ctx, e.fixture.Recruiter.UserID, room.ID)
	require.NoError(t, err)

	var count int64
	require.NoError(t, e.store.DB.Table("video_call_participants").Where("room_id = ?", room.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestBackfillFailureIsSwallowed(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	room := createRoom(t, e, svc, false)
	testhelpers.DropTable(t, e.store.DB, &models.VideoCallParticipant{})

	res, err := svc.End(context.Background(), e.fixture.Recruiter.UserID, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomEnded, res.Room.Status)
}

func TestSweepMissedCalls(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	ctx := context.Background()
	stale := createRoom(t, e, svc, false)
	fresh := createRoom(t, e, svc, false)

	longAgo := fixedNow.Add(-5 * time.Minute)
	_, err := e.store.Rooms.Update(ctx, stale.ID, map[string]any{"status": models.RoomWaiting, "started_at": longAgo})
	require.NoError(t, err)
	_, err = e.store.Rooms.Update(ctx, fresh.ID, map[string]any{"status": models.RoomWaiting, "started_at": fixedNow.Add(-30 * time.Second)})
	require.NoError(t, err)

	failed, err := svc.SweepMissedCalls(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	got, _ := e.store.Rooms.GetByID(ctx, stale.ID)
	assert.Equal(t, models.RoomFailed, got.Status)
	got, _ = e.store.Rooms.GetByID(ctx, fresh.ID)
	assert.Equal(t, models.RoomWaiting, got.Status)
	assert.Len(t, e.notifier.ofType(models.NotificationMissedCall), 1)
	assert.Contains(t, e.video.deleted, stale.DailyRoomName)
}

func TestAgencyRoomUsesRecruitersNotAgency(t *testing.T) {
	e := newEnv(t)
	svc := e.roomService()
	ctx := context.Background()
	colleague := &models.Recruiter{UserID: "5d7f9b1c-2e4a-4c6b-8d0f-1a3c5e7b9d2f", AgencyID: e.fixture.Agency.ID, FirstName: "Lea", LastName: "Cruz"}
	require.NoError(t, e.store.Recruiters.Create(ctx, colleague))

	ended := createRoom(t, e, svc, true)
	_, err := svc.End(ctx, colleague.UserID, ended.ID)
	require.NoError(t, err)
	participants, err := e.store.Rooms.ListParticipants(ctx, ended.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	for _, p := range participants {
		if p.Role == models.ParticipantHost {
			assert.Equal(t, colleague.UserID, p.UserID)
			assert.Equal(t, "Lea Cruz", p.Name)
		}
	}

	missed := createRoom(t, e, svc, true)
	_, err = e.store.Rooms.Update(ctx, missed.ID, map[string]any{"status": models.RoomWaiting, "started_at": fixedNow.Add(-5 * time.Minute)})
	require.NoError(t, err)
	failed, err := svc.SweepMissedCalls(ctx, fixedNow)
	require.NoError(t, err)
	require.Equal(t, 1, failed)

	var recipients []string
	for _, n := range e.notifier.ofType(models.NotificationMissedCall) {
		recipients = append(recipients, n.RecipientID)
	}
	assert.ElementsMatch(t, []string{e.fixture.Recruiter.UserID, colleague.UserID}, recipients)
	assert.NotContains(t, recipients, e.fixture.Agency.ID)
}

func TestNameResolverOrder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	resolver := NewNameResolver(e.store)

	require.NoError(t, e.store.Profiles.Create(ctx, &models.UserProfile{
		UserID: e.fixture.Recruiter.UserID, FullName: "Profile Name", Email: "jon@profiles.test", Role: models.RoleRecruiter,
	}))
	name, ok := resolver.Resolve(ctx, e.fixture.Recruiter.UserID)
	require.True(t, ok)
	assert.Equal(t, "Jon Reyes", name.Value)
	assert.Equal(t, "agency_recruiters", name.Source)

	adminID := "2c4e6a8b-1d3f-4b5a-9c7e-0f1a2b3c4d5e"
	require.NoError(t, e.store.Profiles.Create(ctx, &models.UserProfile{UserID: adminID, FullName: "Ada Admin", Email: "ada@bpoc.io", Role: models.RoleAdmin}))
	name, ok = resolver.Resolve(ctx, adminID)
	require.True(t, ok)
	assert.Equal(t, "user_profiles", name.Source)
	assert.Equal(t, "Ada", name.First())

	name, ok = resolver.Resolve(ctx, e.fixture.Candidate.ID)
	require.True(t, ok)
	assert.Equal(t, "candidates", name.Source)

	_, ok = resolver.Resolve(ctx, "unknown")
	assert.False(t, ok)
	_, ok = resolver.Resolve(ctx, "")
	assert.False(t, ok)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[ErrorKind]int{
		KindValidation:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindConflict:     http.StatusConflict,
		KindNotFound:     http.StatusNotFound,
		KindUpstream:     http.StatusBadGateway,
	}
	for kind, want := range cases {
		status, msg := HTTPStatus(&Error{Kind: kind, Message: "m"})
		assert.Equal(t, want, status)
		assert.Equal(t, "m", msg)
	}
	status, msg := HTTPStatus(errProvider)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", msg)
}
