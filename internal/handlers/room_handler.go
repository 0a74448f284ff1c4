package handlers

import (
	"net/http"

	"bpoc/internal/middleware"
	"bpoc/internal/services"
	"bpoc/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type RoomHandler struct {
	service RoomService
	logger  *zap.Logger
}

func NewRoomHandler(service RoomService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{service: service, logger: logger}
}

func (h *RoomHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*CreateRoomRequest](r)
	room, err := h.service.Create(r.Context(), callerFrom(r).UserID, services.CreateRoomInput{
		ParticipantUserID: req.ParticipantUserID,
		InterviewID:       req.InterviewID,
		CallType:          req.CallType,
		Title:             req.Title,
		ScheduledAt:       req.ScheduledAt,
		AgencyHosted:      req.AgencyHosted,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusCreated, room)
}

func (h *RoomHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), callerFrom(r).UserID, chi.URLParam(r, "roomId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, view)
}

func (h *RoomHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*UpdateRoomRequest](r)
	room, err := h.service.Update(r.Context(), callerFrom(r).UserID, chi.URLParam(r, "roomId"), services.UpdateRoomInput{
		Status:    req.Status,
		StartedAt: req.StartedAt,
		EndedAt:   req.EndedAt,
		Notes:     req.Notes,
		Rating:    req.Rating,
		Outcome:   req.Outcome,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, room)
}

func (h *RoomHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.End(r.Context(), callerFrom(r).UserID, chi.URLParam(r, "roomId"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, res)
}
