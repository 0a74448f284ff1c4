package handlers

import (
	"net/http"

	"bpoc/internal/middleware"
	"bpoc/internal/services"
	"bpoc/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type OfferHandler struct {
	service OfferService
	logger  *zap.Logger
}

func NewOfferHandler(service OfferService, logger *zap.Logger) *OfferHandler {
	return &OfferHandler{service: service, logger: logger}
}

func (h *OfferHandler) TemplatesHandler(w http.ResponseWriter, r *http.Request) {
	utils.Success(w, http.StatusOK, h.service.Templates())
}

func (h *OfferHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*CreateOfferRequest](r)
	res, err := h.service.Create(r.Context(), callerFrom(r), services.CreateOfferInput{
		ApplicationID: req.ApplicationID,
		TemplateKey:   req.TemplateKey,
		Salary:        req.Salary,
		Currency:      req.Currency,
		StartDate:     req.StartDate,
		Extra:         req.Values,
		RenderPDF:     req.RenderPDF,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if len(res.MissingPlaceholders) > 0 {
		h.logger.Info("offer rendered with unfilled placeholders",
			zap.String("offerId", res.Offer.ID),
			zap.Strings("missing", res.MissingPlaceholders))
	}
	utils.Success(w, http.StatusCreated, res)
}

func (h *OfferHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	offer, err := h.service.Get(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, offer)
}
