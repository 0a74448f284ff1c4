package handlers

import (
	"net/http"

	"bpoc/internal/middleware"
	"bpoc/internal/services"
	"bpoc/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type InterviewHandler struct {
	service InterviewService
	logger  *zap.Logger
}

func NewInterviewHandler(service InterviewService, logger *zap.Logger) *InterviewHandler {
	return &InterviewHandler{service: service, logger: logger}
}

func (h *InterviewHandler) ProposeHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*ProposeRequest](r)
	caller := callerFrom(r)

	res, err := h.service.Propose(r.Context(), caller.UserID, services.ProposeInput{
		ApplicationID:   req.ApplicationID,
		CandidateID:     req.CandidateID,
		InterviewType:   req.InterviewType,
		DurationMinutes: req.DurationMinutes,
		Slots:           req.ProposedTimes,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("interview proposed",
		zap.String("proposalId", res.Proposal.ID),
		zap.String("interviewId", res.Interview.ID),
		zap.Int("slots", len(res.Proposal.ProposedTimes)))
	utils.Success(w, http.StatusCreated, res)
}

func (h *InterviewHandler) RespondHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*RespondRequest](r)
	caller := callerFrom(r)

	res, err := h.service.Respond(r.Context(), caller.UserID, services.RespondInput{
		ProposalID:      req.ProposalID,
		Action:          services.RespondAction(req.Action),
		AcceptedTime:    req.AcceptedTime,
		AlternativeTime: req.AlternativeTime,
		Message:         req.Message,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.logger.Info("proposal answered",
		zap.String("proposalId", req.ProposalID),
		zap.String("action", req.Action),
		zap.String("status", string(res.Proposal.Status)))
	utils.Success(w, http.StatusOK, res)
}

func (h *InterviewHandler) ResponsesHandler(w http.ResponseWriter, r *http.Request) {
	responses, err := h.service.Responses(r.Context(), callerFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, responses)
}
