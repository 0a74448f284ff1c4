package routers

import (
	"net/http"

	"bpoc/internal/handlers"
	"bpoc/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func AuthRoutes(router *chi.Mux, authHandler *handlers.AuthHandler, auth func(http.Handler) http.Handler) {
	router.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*handlers.LoginRequest]()).Post("/login", authHandler.LoginHandler)
		r.With(middleware.ValidateRequest[*handlers.RegisterRequest]()).Post("/register", authHandler.RegisterHandler)
		r.With(auth).Get("/me", authHandler.MeHandler)
	})
}
