package handlers

import (
	"net/http"

	"bpoc/internal/middleware"
	"bpoc/internal/services"
	"bpoc/internal/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service AuthService
	logger  *zap.Logger
}

func NewAuthHandler(service AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*LoginRequest](r)
	res, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, res)
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*RegisterRequest](r)
	profile, err := h.service.RegisterCandidate(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusCreated, profile)
}

func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Me(r.Context(), callerFrom(r).UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, profile)
}
