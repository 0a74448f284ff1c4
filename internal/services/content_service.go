package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bpoc/internal/ingestion"
	"bpoc/internal/llm"
	"bpoc/internal/models"
	"bpoc/internal/prompts"
	"bpoc/internal/repositories"

	"go.uber.org/zap"
)

type GenerateInput struct {
	PromptKey   string            `json:"promptKey"`
	Variant     string            `json:"variant"`
	Variables   map[string]string `json:"variables"`
	SubjectType string            `json:"subjectType"`
	SubjectID   string            `json:"subjectId"`
}

type ResumeResult struct {
	ResumeURL string            `json:"resumeUrl"`
	Summary   string            `json:"summary"`
	Content   *models.AIContent `json:"content"`
}

// ContentService runs prompt templates through the configured LLM provider
// and records every attempt as an AIContent row.
type ContentService struct {
	store    *repositories.Store
	prompts  *prompts.PromptManager
	provider llm.Provider
	objects  ObjectStore
	logger   *zap.Logger
}

func NewContentService(store *repositories.Store, pm *prompts.PromptManager, provider llm.Provider, objects ObjectStore, logger *zap.Logger) *ContentService {
	return &ContentService{store: store, prompts: pm, provider: provider, objects: objects, logger: logger}
}

// Generate records the request and calls the provider once. A provider
// failure leaves the row failed for Backfill and is returned as upstream.
func (s *ContentService) Generate(ctx context.Context, in GenerateInput) (*models.AIContent, error) {
	kind, ok := s.prompts.Kind(in.PromptKey)
	if !ok {
		return nil, validationf("unknown prompt %q", in.PromptKey)
	}
	if kind == models.AIContentImage {
		if _, ok := s.provider.(llm.ImageProvider); !ok || s.objects == nil {
			return nil, validationf("provider %s cannot generate images", s.provider.GetProviderName())
		}
	}
	prompt, err := s.prompts.BuildPrompt(in.PromptKey, in.Variant, in.Variables)
	if err != nil {
		return nil, validationf("%v", err)
	}

	vars := make(map[string]any, len(in.Variables))
	for k, v := range in.Variables {
		vars[k] = v
	}
	content := &models.AIContent{
		Kind:        kind,
		SubjectType: in.SubjectType,
		SubjectID:   in.SubjectID,
		PromptKey:   in.PromptKey,
		Variables:   vars,
		Prompt:      prompt,
		Status:      models.AIContentPending,
	}
	if err := s.store.AIContents.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("create ai content: %w", err)
	}
	if err := s.run(ctx, content); err != nil {
		return content, upstream("content generation failed", err)
	}
	return content, nil
}

func (s *ContentService) Get(ctx context.Context, id string) (*models.AIContent, error) {
	content, err := s.store.AIContents.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "content not found")
	}
	return content, nil
}

func (s *ContentService) Templates() []string {
	return s.prompts.GetTemplates()
}

// Backfill retries failed generations below maxAttempts and returns how many
// completed.
func (s *ContentService) Backfill(ctx context.Context, maxAttempts, limit int) (int, error) {
	rows, err := s.store.AIContents.ListRetryable(ctx, maxAttempts, limit)
	if err != nil {
		return 0, fmt.Errorf("list retryable content: %w", err)
	}
	completed := 0
	for i := range rows {
		if ctx.Err() != nil {
			return completed, ctx.Err()
		}
		if err := s.run(ctx, &rows[i]); err != nil {
			s.logger.Warn("ai backfill attempt failed",
				zap.String("contentId", rows[i].ID),
				zap.Int("attempts", rows[i].Attempts),
				zap.Error(err))
			continue
		}
		completed++
	}
	return completed, nil
}

// SummarizeResume stores the uploaded PDF, keeps its text on the candidate
// and asks the provider for a short summary. A failed summary still keeps
// the upload.
func (s *ContentService) SummarizeResume(ctx context.Context, caller Caller, candidateID string, pdf []byte) (*ResumeResult, error) {
	if !caller.IsStaff() && caller.UserID != candidateID {
		return nil, forbidden("cannot update another candidate's resume")
	}
	candidate, err := s.store.Candidates.GetByID(ctx, candidateID)
	if err != nil {
		return nil, notFoundOr(err, "candidate not found")
	}
	text, err := ingestion.ExtractPDFText(pdf)
	if err != nil {
		if errors.Is(err, ingestion.ErrNoText) {
			return nil, validationf("resume has no readable text")
		}
		return nil, validationf("resume is not a readable PDF")
	}

	result := &ResumeResult{ResumeURL: candidate.ResumeURL, Summary: candidate.AISummary}
	if s.objects != nil {
		url, err := s.objects.Put(ctx, "resumes/"+candidateID+".pdf", "application/pdf", pdf)
		if err != nil {
			return nil, upstream("failed to store resume", err)
		}
		result.ResumeURL = url
	}

	content, genErr := s.Generate(ctx, GenerateInput{
		PromptKey:   "candidate_summary",
		Variables:   map[string]string{"candidate_name": displayOr(candidate.FullName(), "the candidate"), "resume_text": text},
		SubjectType: "candidate",
		SubjectID:   candidateID,
	})
	result.Content = content
	if genErr == nil {
		result.Summary = strings.TrimSpace(content.Output)
	} else {
		s.logger.Warn("resume summary failed", zap.String("candidateId", candidateID), zap.Error(genErr))
	}

	if err := s.store.Candidates.UpdateResume(ctx, candidateID, result.ResumeURL, text, result.Summary); err != nil {
		return nil, fmt.Errorf("update resume: %w", err)
	}
	return result, nil
}

func (s *ContentService) run(ctx context.Context, content *models.AIContent) error {
	content.Attempts++
	content.Provider = s.provider.GetProviderName()

	var err error
	switch content.Kind {
	case models.AIContentImage:
		err = s.runImage(ctx, content)
	default:
		var gen *llm.Generation
		gen, err = s.provider.GenerateText(ctx, content.Prompt)
		if err == nil {
			content.Output = gen.Content
		}
	}

	if err != nil {
		content.Status = models.AIContentFailed
		content.Error = err.Error()
	} else {
		content.Status = models.AIContentCompleted
		content.Error = ""
	}
	if saveErr := s.store.AIContents.Save(ctx, content); saveErr != nil {
		return fmt.Errorf("save ai content: %w", saveErr)
	}
	return err
}

func (s *ContentService) runImage(ctx context.Context, content *models.AIContent) error {
	images, ok := s.provider.(llm.ImageProvider)
	if !ok || s.objects == nil {
		return fmt.Errorf("provider %s cannot generate images", content.Provider)
	}
	img, err := images.GenerateImage(ctx, content.Prompt)
	if err != nil {
		return err
	}
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	url, err := s.objects.Put(ctx, "ai/"+content.ID+".png", mime, img.Data)
	if err != nil {
		return fmt.Errorf("store image: %w", err)
	}
	content.ImageObject = &url
	return nil
}
