package handlers

import (
	"errors"
	"io"
	"net/http"

	"bpoc/internal/middleware"
	"bpoc/internal/services"
	"bpoc/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxResumeBytes caps uploaded resume PDFs.
const maxResumeBytes = 10 << 20

type AIHandler struct {
	service ContentService
	logger  *zap.Logger
}

func NewAIHandler(service ContentService, logger *zap.Logger) *AIHandler {
	return &AIHandler{service: service, logger: logger}
}

func (h *AIHandler) TemplatesHandler(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, http.StatusOK, h.service.Templates())
}

// GenerateHandler reports a failed generation as 502 with the stored row id in
// the log; the backfill job retries it.
func (h *AIHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*GenerateRequest](r)
	content, err := h.service.Generate(r.Context(), services.GenerateInput{
		PromptKey:   req.PromptKey,
		Variant:     req.Variant,
		Variables:   req.Variables,
		SubjectType: req.SubjectType,
		SubjectID:   req.SubjectID,
	})
	if err != nil {
		if content != nil {
			h.logger.Warn("generation stored as failed", zap.String("contentId", content.ID), zap.Int("attempts", content.Attempts))
		}
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("content generated",
		zap.String("contentId", content.ID),
		zap.String("promptKey", content.PromptKey),
		zap.String("provider", content.Provider))
	utils.Success(w, http.StatusCreated, content)
}

func (h *AIHandler) GetContentHandler(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, content)
}

// ResumeHandler accepts a multipart upload with the PDF in the "resume" field.
func (h *AIHandler) ResumeHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxResumeBytes)
	if err := r.ParseMultipartForm(maxResumeBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.JSONError(w, http.StatusRequestEntityTooLarge, "resume exceeds 10MB")
			return
		}
		utils.JSONError(w, http.StatusBadRequest, "expected a multipart form with a resume file")
		return
	}
	file, _, err := r.FormFile("resume")
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "resume file is required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, "failed to read resume")
		return
	}

	res, err := h.service.SummarizeResume(r.Context(), callerFrom(r), chi.URLParam(r, "id"), data)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, res)
}
