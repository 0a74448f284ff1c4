package services

import (
	"context"
	"testing"

	"bpoc/internal/models"
	"bpoc/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) recruiterCaller() Caller {
	return Caller{UserID: e.fixture.Recruiter.UserID, Role: models.RoleRecruiter, AgencyID: e.fixture.Agency.ID}
}

func (e *env) candidateCaller() Caller {
	return Caller{UserID: e.fixture.Candidate.ID, Role: models.RoleCandidate}
}

func TestDirectoryListAgencies(t *testing.T) {
	e := newEnv(t)
	svc := NewDirectoryService(e.store)
	ctx := context.Background()
	require.NoError(t, e.store.Agencies.Create(ctx, &models.Agency{Name: "Dormant", Slug: "dormant-" + uuid.NewString()[:6], Email: "x@dormant.test"}))
	require.NoError(t, e.store.DB.Model(&models.Agency{}).Where("name = ?", "Dormant").Update("is_active", false).Error)

	public, err := svc.ListAgencies(ctx, e.candidateCaller())
	require.NoError(t, err)
	admin, err := svc.ListAgencies(ctx, Caller{Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, public, 1)
	assert.Len(t, admin, 2)

	_, err = svc.GetAgency(ctx, uuid.NewString())
	requireKind(t, err, KindNotFound)
}

func TestDirectorySearchCandidates(t *testing.T) {
	e := newEnv(t)
	svc := NewDirectoryService(e.store)
	ctx := context.Background()

	found, err := svc.SearchCandidates(ctx, repositories.CandidateFilter{Skill: "support"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = svc.SearchCandidates(ctx, repositories.CandidateFilter{Search: "nobody-by-this-name", Limit: 1000})
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = svc.SearchCandidates(ctx, repositories.CandidateFilter{Offset: -1})
	requireKind(t, err, KindValidation)
}

func TestDirectoryGetCandidate(t *testing.T) {
	e := newEnv(t)
	svc := NewDirectoryService(e.store)
	ctx := context.Background()

	_, err := svc.GetCandidate(ctx, e.candidateCaller(), e.fixture.Candidate.ID)
	require.NoError(t, err)
	_, err = svc.GetCandidate(ctx, e.recruiterCaller(), e.fixture.Candidate.ID)
	require.NoError(t, err)
	_, err = svc.GetCandidate(ctx, Caller{UserID: uuid.NewString(), Role: models.RoleCandidate}, e.fixture.Candidate.ID)
	requireKind(t, err, KindForbidden)
}

func TestDirectoryJobs(t *testing.T) {
	e := newEnv(t)
	svc := NewDirectoryService(e.store)
	ctx := context.Background()

	draft, err := svc.CreateJob(ctx, e.recruiterCaller(), CreateJobInput{Title: "Team Lead", SalaryMin: 30000, SalaryMax: 40000})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDraft, draft.Status)
	assert.Equal(t, e.fixture.Agency.ID, draft.AgencyID)
	assert.Equal(t, "PHP", draft.Currency)

	public, err := svc.ListJobs(ctx, e.candidateCaller(), "draft")
	require.NoError(t, err)
	assert.Len(t, public, 1, "candidates only ever see open jobs")

	mine, err := svc.ListJobs(ctx, e.recruiterCaller(), "")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = svc.ListJobs(ctx, e.recruiterCaller(), "archived")
	requireKind(t, err, KindValidation)

	_, err = svc.CreateJob(ctx, e.recruiterCaller(), CreateJobInput{Title: "X", Status: models.JobStatusClosed})
	requireKind(t, err, KindValidation)
	_, err = svc.CreateJob(ctx, e.recruiterCaller(), CreateJobInput{Title: "X", SalaryMin: 10, SalaryMax: 5})
	requireKind(t, err, KindValidation)
	_, err = svc.CreateJob(ctx, Caller{UserID: uuid.NewString(), Role: models.RoleAdmin}, CreateJobInput{Title: "X"})
	requireKind(t, err, KindForbidden)
}

func TestDirectoryApplyAndAssign(t *testing.T) {
	e := newEnv(t)
	svc := NewDirectoryService(e.store)
	ctx := context.Background()

	app, err := svc.Apply(ctx, e.candidateCaller(), e.fixture.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, "submitted", app.Status)
	assert.Empty(t, app.RecruiterID)

	_, err = svc.Apply(ctx, e.recruiterCaller(), e.fixture.Job.ID)
	requireKind(t, err, KindForbidden)

	draft, err := svc.CreateJob(ctx, e.recruiterCaller(), CreateJobInput{Title: "Hidden"})
	require.NoError(t, err)
	_, err = svc.Apply(ctx, e.candidateCaller(), draft.ID)
	requireKind(t, err, KindConflict)

	assigned, err := svc.AssignRecruiter(ctx, e.recruiterCaller(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, e.fixture.Recruiter.UserID, assigned.RecruiterID)

	_, err = svc.AssignRecruiter(ctx, Caller{UserID: uuid.NewString(), Role: models.RoleRecruiter}, app.ID)
	requireKind(t, err, KindForbidden)
}
