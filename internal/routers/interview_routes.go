package routers

import (
	"net/http"

	"bpoc/internal/handlers"
	"bpoc/internal/middleware"
	"bpoc/internal/models"

	"github.com/go-chi/chi/v5"
)

// InterviewRoutes registers the proposal workflow and the video room lifecycle.
func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, roomHandler *handlers.RoomHandler, auth func(http.Handler) http.Handler) {
	router.Route("/api/v1/interviews", func(r chi.Router) {
		r.Use(auth)
		r.With(
			recruiterOnly,
			middleware.ValidateRequest[*handlers.ProposeRequest](),
		).Post("/propose", interviewHandler.ProposeHandler)
		r.With(
			middleware.RequireRole(models.RoleCandidate),
			middleware.ValidateRequest[*handlers.RespondRequest](),
		).Post("/respond", interviewHandler.RespondHandler)
		r.Get("/proposals/{id}/responses", interviewHandler.ResponsesHandler)
	})

	router.Route("/api/v1/video/rooms", func(r chi.Router) {
		r.Use(auth)
		r.With(middleware.ValidateRequest[*handlers.CreateRoomRequest]()).Post("/", roomHandler.CreateHandler)
		r.Get("/{roomId}", roomHandler.GetHandler)
		r.With(middleware.ValidateRequest[*handlers.UpdateRoomRequest]()).Patch("/{roomId}", roomHandler.UpdateHandler)
		r.Delete("/{roomId}", roomHandler.DeleteHandler)
	})
}
