package handlers

import (
	"net/http"

	"bpoc/internal/middleware"
	"bpoc/internal/services"
	"bpoc/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CampaignHandler struct {
	service CampaignService
	logger  *zap.Logger
}

func NewCampaignHandler(service CampaignService, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{service: service, logger: logger}
}

func (h *CampaignHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*CreateCampaignRequest](r)
	campaign, err := h.service.Create(r.Context(), callerFrom(r), services.CreateCampaignInput{
		Name:            req.Name,
		SubjectTemplate: req.Subject,
		BodyTemplate:    req.Body,
		Recipients:      req.Recipients,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusCreated, campaign)
}

func (h *CampaignHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, view)
}

// SendHandler answers 202 once every recipient is dispatched.
func (h *CampaignHandler) SendHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := h.service.Send(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("campaign dispatched",
		zap.String("campaignId", id),
		zap.Int("recipients", res.Dispatched),
		zap.Bool("queued", res.Queued))
	utils.Success(w, http.StatusAccepted, res)
}
