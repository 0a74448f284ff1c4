package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bpoc/internal/middleware"
	"bpoc/internal/models"
	"bpoc/internal/notifications"
	"bpoc/internal/repositories"
	"bpoc/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

// request builds a request carrying the identity and chi URL params.
func request(method, target, body string, id middleware.Identity, params map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	ctx := middleware.WithIdentity(req.Context(), id)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var (
	recruiter = middleware.Identity{UserID: "rec-1", Role: models.RoleRecruiter, AgencyID: "agency-1"}
	candidate = middleware.Identity{UserID: "cand-1", Role: models.RoleCandidate}
	admin     = middleware.Identity{UserID: "admin-1", Role: models.RoleAdmin}
)

type mockInterviewService struct {
	proposeFn   func(ctx context.Context, recruiterID string, in services.ProposeInput) (*services.ProposeResult, error)
	respondFn   func(ctx context.Context, candidateID string, in services.RespondInput) (*services.RespondResult, error)
	responsesFn func(ctx context.Context, caller services.Caller, proposalID string) ([]models.TimeProposalResponse, error)
}

func (m *mockInterviewService) Propose(ctx context.Context, recruiterID string, in services.ProposeInput) (*services.ProposeResult, error) {
	if m.proposeFn == nil {
		panic("unexpected call to Propose")
	}
	return m.proposeFn(ctx, recruiterID, in)
}

func (m *mockInterviewService) Respond(ctx context.Context, candidateID string, in services.RespondInput) (*services.RespondResult, error) {
	if m.respondFn == nil {
		panic("unexpected call to Respond")
	}
	return m.respondFn(ctx, candidateID, in)
}

func (m *mockInterviewService) Responses(ctx context.Context, caller services.Caller, proposalID string) ([]models.TimeProposalResponse, error) {
	if m.responsesFn == nil {
		panic("unexpected call to Responses")
	}
	return m.responsesFn(ctx, caller, proposalID)
}

type mockRoomService struct {
	createFn func(ctx context.Context, callerID string, in services.CreateRoomInput) (*models.VideoCallRoom, error)
	getFn    func(ctx context.Context, callerID, roomID string) (*services.RoomView, error)
	updateFn func(ctx context.Context, callerID, roomID string, in services.UpdateRoomInput) (*models.VideoCallRoom, error)
	endFn    func(ctx context.Context, callerID, roomID string) (*services.EndResult, error)
}

func (m *mockRoomService) Create(ctx context.Context, callerID string, in services.CreateRoomInput) (*models.VideoCallRoom, error) {
	if m.createFn == nil {
		panic("unexpected call to Create")
	}
	return m.createFn(ctx, callerID, in)
}

func (m *mockRoomService) Get(ctx context.Context, callerID, roomID string) (*services.RoomView, error) {
	if m.getFn == nil {
		panic("unexpected call to Get")
	}
	return m.getFn(ctx, callerID, roomID)
}

func (m *mockRoomService) Update(ctx context.Context, callerID, roomID string, in services.UpdateRoomInput) (*models.VideoCallRoom, error) {
	if m.updateFn == nil {
		panic("unexpected call to Update")
	}
	return m.updateFn(ctx, callerID, roomID, in)
}

func (m *mockRoomService) End(ctx context.Context, callerID, roomID string) (*services.EndResult, error) {
	if m.endFn == nil {
		panic("unexpected call to End")
	}
	return m.endFn(ctx, callerID, roomID)
}

type mockDirectoryService struct {
	listAgenciesFn func(ctx context.Context, caller services.Caller) ([]models.Agency, error)
	searchFn       func(ctx context.Context, filter repositories.CandidateFilter) ([]models.Candidate, error)
	listJobsFn     func(ctx context.Context, caller services.Caller, status string) ([]models.Job, error)
	createJobFn    func(ctx context.Context, caller services.Caller, in services.CreateJobInput) (*models.Job, error)
	applyFn        func(ctx context.Context, caller services.Caller, jobID string) (*models.Application, error)
}

func (m *mockDirectoryService) ListAgencies(ctx context.Context, caller services.Caller) ([]models.Agency, error) {
	return m.listAgenciesFn(ctx, caller)
}

func (m *mockDirectoryService) GetAgency(context.Context, string) (*models.Agency, error) {
	panic("unexpected call to GetAgency")
}

func (m *mockDirectoryService) SearchCandidates(ctx context.Context, filter repositories.CandidateFilter) ([]models.Candidate, error) {
	return m.searchFn(ctx, filter)
}

func (m *mockDirectoryService) GetCandidate(context.Context, services.Caller, string) (*models.Candidate, error) {
	panic("unexpected call to GetCandidate")
}

func (m *mockDirectoryService) ListJobs(ctx context.Context, caller services.Caller, status string) ([]models.Job, error) {
	return m.listJobsFn(ctx, caller, status)
}

func (m *mockDirectoryService) CreateJob(ctx context.Context, caller services.Caller, in services.CreateJobInput) (*models.Job, error) {
	return m.createJobFn(ctx, caller, in)
}

func (m *mockDirectoryService) Apply(ctx context.Context, caller services.Caller, jobID string) (*models.Application, error) {
	return m.applyFn(ctx, caller, jobID)
}

func (m *mockDirectoryService) AssignRecruiter(context.Context, services.Caller, string) (*models.Application, error) {
	panic("unexpected call to AssignRecruiter")
}

type mockPipelineService struct {
	progressFn func(ctx context.Context, applicationID string) (*services.Progress, error)
	updateFn   func(ctx context.Context, callerID, applicationID, status string) (*models.Application, error)
}

func (m *mockPipelineService) Progress(ctx context.Context, applicationID string) (*services.Progress, error) {
	return m.progressFn(ctx, applicationID)
}

func (m *mockPipelineService) UpdateStatus(ctx context.Context, callerID, applicationID, status string) (*models.Application, error) {
	return m.updateFn(ctx, callerID, applicationID, status)
}

type mockOfferService struct {
	createFn func(ctx context.Context, caller services.Caller, in services.CreateOfferInput) (*services.OfferResult, error)
	getFn    func(ctx context.Context, caller services.Caller, id string) (*models.Offer, error)
}

func (m *mockOfferService) Templates() map[string][]string {
	return map[string][]string{"standard_offer": {"candidate_name"}}
}

func (m *mockOfferService) Create(ctx context.Context, caller services.Caller, in services.CreateOfferInput) (*services.OfferResult, error) {
	return m.createFn(ctx, caller, in)
}

func (m *mockOfferService) Get(ctx context.Context, caller services.Caller, id string) (*models.Offer, error) {
	return m.getFn(ctx, caller, id)
}

type mockCampaignService struct {
	createFn func(ctx context.Context, caller services.Caller, in services.CreateCampaignInput) (*models.EmailCampaign, error)
	getFn    func(ctx context.Context, id string) (*services.CampaignView, error)
	sendFn   func(ctx context.Context, id string) (*services.SendResult, error)
}

func (m *mockCampaignService) Create(ctx context.Context, caller services.Caller, in services.CreateCampaignInput) (*models.EmailCampaign, error) {
	return m.createFn(ctx, caller, in)
}

func (m *mockCampaignService) Get(ctx context.Context, id string) (*services.CampaignView, error) {
	return m.getFn(ctx, id)
}

func (m *mockCampaignService) Send(ctx context.Context, id string) (*services.SendResult, error) {
	return m.sendFn(ctx, id)
}

type mockContentService struct {
	generateFn  func(ctx context.Context, in services.GenerateInput) (*models.AIContent, error)
	getFn       func(ctx context.Context, id string) (*models.AIContent, error)
	summarizeFn func(ctx context.Context, caller services.Caller, candidateID string, pdf []byte) (*services.ResumeResult, error)
}

func (m *mockContentService) Templates() []string { return []string{"job_description"} }

func (m *mockContentService) Generate(ctx context.Context, in services.GenerateInput) (*models.AIContent, error) {
	return m.generateFn(ctx, in)
}

func (m *mockContentService) Get(ctx context.Context, id string) (*models.AIContent, error) {
	return m.getFn(ctx, id)
}

func (m *mockContentService) SummarizeResume(ctx context.Context, caller services.Caller, candidateID string, pdf []byte) (*services.ResumeResult, error) {
	return m.summarizeFn(ctx, caller, candidateID, pdf)
}

type mockNotificationService struct {
	listFn     func(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error)
	markReadFn func(ctx context.Context, id, recipientID string) error
}

func (m *mockNotificationService) List(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	return m.listFn(ctx, recipientID, unreadOnly, limit)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	return m.markReadFn(ctx, id, recipientID)
}

type mockAuthService struct {
	loginFn    func(ctx context.Context, email, password string) (*services.LoginResult, error)
	registerFn func(ctx context.Context, in services.RegisterInput) (*models.UserProfile, error)
	meFn       func(ctx context.Context, userID string) (*models.UserProfile, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAuthService) RegisterCandidate(ctx context.Context, in services.RegisterInput) (*models.UserProfile, error) {
	return m.registerFn(ctx, in)
}

func (m *mockAuthService) Me(ctx context.Context, userID string) (*models.UserProfile, error) {
	return m.meFn(ctx, userID)
}

var (
	_ InterviewService    = (*mockInterviewService)(nil)
	_ RoomService         = (*mockRoomService)(nil)
	_ DirectoryService    = (*mockDirectoryService)(nil)
	_ PipelineService     = (*mockPipelineService)(nil)
	_ OfferService        = (*mockOfferService)(nil)
	_ CampaignService     = (*mockCampaignService)(nil)
	_ ContentService      = (*mockContentService)(nil)
	_ NotificationService = (*mockNotificationService)(nil)
	_ AuthService         = (*mockAuthService)(nil)
)

var (
	_ InterviewService = (*services.ProposalService)(nil)
	_ RoomService      = (*services.RoomService)(nil)
	_ DirectoryService = (*services.DirectoryService)(nil)
	_ PipelineService  = (*services.PipelineService)(nil)
	_ OfferService     = (*services.OfferService)(nil)
	_ CampaignService  = (*services.CampaignService)(nil)
	_ ContentService   = (*services.ContentService)(nil)
	_ AuthService      = (*services.AuthService)(nil)

	_ NotificationService = (*notifications.Notifier)(nil)
)
