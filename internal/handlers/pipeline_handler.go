package handlers

import (
	"net/http"

	"bpoc/internal/middleware"
	"bpoc/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PipelineHandler struct {
	service PipelineService
	logger  *zap.Logger
}

func NewPipelineHandler(service PipelineService, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{service: service, logger: logger}
}

func (h *PipelineHandler) ProgressHandler(w http.ResponseWriter, r *http.Request) {
	progress, err := h.service.Progress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, progress)
}

func (h *PipelineHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*UpdateStatusRequest](r)
	app, err := h.service.UpdateStatus(r.Context(), callerFrom(r).UserID, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, app)
}
