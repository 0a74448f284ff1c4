package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bpoc/internal/models"
	"bpoc/internal/prompts"
	"bpoc/internal/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func contentService(t *testing.T, e *env, provider *fakeLLM, objects ObjectStore) *ContentService {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	require.NoError(t, err)
	return NewContentService(e.store, pm, provider, objects, zap.NewNop())
}

var jobVars = map[string]string{"job_title": "Chat Support", "client_name": "Acme", "skills": "english, typing"}

func TestContentGenerateText(t *testing.T) {
	e := newEnv(t)
	provider := &fakeLLM{}
	svc := contentService(t, e, provider, nil)

	c, err := svc.Generate(context.Background(), GenerateInput{PromptKey: "job_description", Variables: jobVars, SubjectType: "job", SubjectID: e.fixture.Job.ID})
	require.NoError(t, err)
	assert.Equal(t, models.AIContentCompleted, c.Status)
	assert.Equal(t, 1, c.Attempts)
	assert.Equal(t, "fake", c.Provider)
	assert.Contains(t, c.Output, "Chat Support")

	stored, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Output, stored.Output)
	assert.Equal(t, "Acme", stored.Variables["client_name"])
}

func TestContentGenerateValidation(t *testing.T) {
	e := newEnv(t)
	svc := contentService(t, e, &fakeLLM{}, nil)

	_, err := svc.Generate(context.Background(), GenerateInput{PromptKey: "nope"})
	requireKind(t, err, KindValidation)

	_, err = svc.Generate(context.Background(), GenerateInput{PromptKey: "job_description", Variables: map[string]string{"job_title": "x"}})
	requireKind(t, err, KindValidation)

	_, err = svc.Generate(context.Background(), GenerateInput{PromptKey: "job_description", Variant: "missing", Variables: jobVars})
	requireKind(t, err, KindValidation)
}

func TestContentGenerateImage(t *testing.T) {
	e := newEnv(t)
	objects := &fakeObjects{}
	svc := contentService(t, e, &fakeLLM{}, objects)

	c, err := svc.Generate(context.Background(), GenerateInput{PromptKey: "banner_image", Variant: "night_shift", Variables: map[string]string{"theme": "teal"}})
	require.NoError(t, err)
	assert.Equal(t, models.AIContentImage, c.Kind)
	require.NotNil(t, c.ImageObject)
	assert.Equal(t, "ai/"+c.ID+".png", *c.ImageObject)
	assert.Contains(t, objects.objects, "ai/"+c.ID+".png")
}

func TestContentGenerateImageUnsupported(t *testing.T) {
	e := newEnv(t)
	pm, err := prompts.NewPromptManager()
	require.NoError(t, err)
	svc := NewContentService(e.store, pm, textOnlyLLM{inner: &fakeLLM{}}, &fakeObjects{}, zap.NewNop())

	_, err = svc.Generate(context.Background(), GenerateInput{PromptKey: "banner_image", Variables: map[string]string{"theme": "teal"}})
	requireKind(t, err, KindValidation)
}

func TestContentFailureThenBackfill(t *testing.T) {
	e := newEnv(t)
	down := true
	provider := &fakeLLM{textFn: func(prompt string) (string, error) {
		if down {
			return "", errProvider
		}
		return "recovered", nil
	}}
	svc := contentService(t, e, provider, nil)

	c, err := svc.Generate(context.Background(), GenerateInput{PromptKey: "job_description", Variables: jobVars})
	requireKind(t, err, KindUpstream)
	require.NotNil(t, c)
	assert.Equal(t, models.AIContentFailed, c.Status)
	assert.Equal(t, errProvider.Error(), c.Error)

	n, err := svc.Backfill(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Zero(t, n)

	down = false
	n, err = svc.Backfill(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := svc.Get(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AIContentCompleted, stored.Status)
	assert.Equal(t, 3, stored.Attempts)
	assert.Equal(t, "recovered", stored.Output)
	assert.Empty(t, stored.Error)
}

func TestContentBackfillRespectsMaxAttempts(t *testing.T) {
	e := newEnv(t)
	provider := &fakeLLM{textFn: func(string) (string, error) { return "", errProvider }}
	svc := contentService(t, e, provider, nil)

	_, err := svc.Generate(context.Background(), GenerateInput{PromptKey: "job_description", Variables: jobVars})
	require.Error(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.Backfill(context.Background(), 2, 10)
		require.NoError(t, err)
	}
	assert.Len(t, provider.prompts, 2)
}

func TestSummarizeResume(t *testing.T) {
	e := newEnv(t)
	objects := &fakeObjects{}
	provider := &fakeLLM{textFn: func(prompt string) (string, error) {
		if !strings.Contains(prompt, "Seven years of voice support") {
			return "", errors.New("resume text missing from prompt")
		}
		return "  Experienced voice agent.  ", nil
	}}
	svc := contentService(t, e, provider, objects)
	candidate := Caller{UserID: e.fixture.Candidate.ID, Role: models.RoleCandidate}

	res, err := svc.SummarizeResume(context.Background(), candidate, e.fixture.Candidate.ID, testhelpers.MinimalPDF("Seven years of voice support"))
	require.NoError(t, err)
	assert.Equal(t, "Experienced voice agent.", res.Summary)
	assert.Equal(t, "resumes/"+e.fixture.Candidate.ID+".pdf", res.ResumeURL)

	stored, err := e.store.Candidates.GetByID(context.Background(), e.fixture.Candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, "Experienced voice agent.", stored.AISummary)
	assert.Contains(t, stored.ResumeText, "Seven years of voice support")
}

func TestSummarizeResumeProviderDownKeepsUpload(t *testing.T) {
	e := newEnv(t)
	objects := &fakeObjects{}
	svc := contentService(t, e, &fakeLLM{textFn: func(string) (string, error) { return "", errProvider }}, objects)
	caller := Caller{UserID: e.fixture.Recruiter.UserID, Role: models.RoleRecruiter}

	res, err := svc.SummarizeResume(context.Background(), caller, e.fixture.Candidate.ID, testhelpers.MinimalPDF("Night shift lead"))
	require.NoError(t, err)
	assert.Empty(t, res.Summary)
	assert.Equal(t, models.AIContentFailed, res.Content.Status)

	stored, err := e.store.Candidates.GetByID(context.Background(), e.fixture.Candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, "resumes/"+e.fixture.Candidate.ID+".pdf", stored.ResumeURL)
}

func TestSummarizeResumeRejects(t *testing.T) {
	e := newEnv(t)
	svc := contentService(t, e, &fakeLLM{}, &fakeObjects{})

	_, err := svc.SummarizeResume(context.Background(), Caller{UserID: "someone", Role: models.RoleCandidate}, e.fixture.Candidate.ID, testhelpers.MinimalPDF("x"))
	requireKind(t, err, KindForbidden)

	self := Caller{UserID: e.fixture.Candidate.ID, Role: models.RoleCandidate}
	_, err = svc.SummarizeResume(context.Background(), self, e.fixture.Candidate.ID, []byte("plain text"))
	requireKind(t, err, KindValidation)

	_, err = svc.SummarizeResume(context.Background(), self, e.fixture.Candidate.ID, testhelpers.MinimalPDF(""))
	requireKind(t, err, KindValidation)
}
