package routers

import (
	"net/http"

	"bpoc/internal/handlers"
	"bpoc/internal/middleware"
	"bpoc/internal/models"

	"github.com/go-chi/chi/v5"
)

var (
	staff         = middleware.RequireRole(models.RoleAdmin, models.RoleRecruiter)
	recruiterOnly = middleware.RequireRole(models.RoleRecruiter)
)

func DirectoryRoutes(router *chi.Mux, directoryHandler *handlers.DirectoryHandler, aiHandler *handlers.AIHandler, auth func(http.Handler) http.Handler) {
	router.Route("/api/v1/agencies", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", directoryHandler.ListAgenciesHandler)
		r.Get("/{id}", directoryHandler.GetAgencyHandler)
	})

	router.Route("/api/v1/candidates", func(r chi.Router) {
		r.Use(auth)
		r.With(staff).Get("/", directoryHandler.SearchCandidatesHandler)
		r.Get("/{id}", directoryHandler.GetCandidateHandler)
		r.Post("/{id}/resume", aiHandler.ResumeHandler)
	})

	// Anonymous callers only see open jobs.
	router.Route("/api/v1/jobs", func(r chi.Router) {
		r.Get("/", directoryHandler.ListJobsHandler)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.With(recruiterOnly, middleware.ValidateRequest[*handlers.CreateJobRequest]()).Post("/", directoryHandler.CreateJobHandler)
			r.With(middleware.RequireRole(models.RoleCandidate)).Post("/{id}/apply", directoryHandler.ApplyHandler)
		})
	})
}

func ApplicationRoutes(router *chi.Mux, pipelineHandler *handlers.PipelineHandler, directoryHandler *handlers.DirectoryHandler, auth func(http.Handler) http.Handler) {
	router.Route("/api/v1/applications/{id}", func(r chi.Router) {
		r.Use(auth)
		r.Get("/progress", pipelineHandler.ProgressHandler)
		r.With(recruiterOnly, middleware.ValidateRequest[*handlers.UpdateStatusRequest]()).Patch("/status", pipelineHandler.UpdateStatusHandler)
		r.With(recruiterOnly).Post("/assign", directoryHandler.AssignHandler)
	})
}
