package routers

import (
	"net/http"

	"bpoc/internal/handlers"
	"bpoc/internal/middleware"
	"bpoc/internal/models"

	"github.com/go-chi/chi/v5"
)

func OfferRoutes(router *chi.Mux, offerHandler *handlers.OfferHandler, auth func(http.Handler) http.Handler) {
	router.Route("/api/v1/offers", func(r chi.Router) {
		r.Use(auth)
		r.With(staff).Get("/templates", offerHandler.TemplatesHandler)
		r.With(staff, middleware.ValidateRequest[*handlers.CreateOfferRequest]()).Post("/", offerHandler.CreateHandler)
		r.Get("/{id}", offerHandler.GetHandler)
	})
}

func CampaignRoutes(router *chi.Mux, campaignHandler *handlers.CampaignHandler, auth func(http.Handler) http.Handler) {
	router.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Use(auth, middleware.RequireRole(models.RoleAdmin))
		r.With(middleware.ValidateRequest[*handlers.CreateCampaignRequest]()).Post("/", campaignHandler.CreateHandler)
		r.Get("/{id}", campaignHandler.GetHandler)
		r.Post("/{id}/send", campaignHandler.SendHandler)
	})
}

func AIRoutes(router *chi.Mux, aiHandler *handlers.AIHandler, auth func(http.Handler) http.Handler) {
	router.Route("/api/v1/admin/ai", func(r chi.Router) {
		r.Use(auth, middleware.RequireRole(models.RoleAdmin))
		r.Get("/templates", aiHandler.TemplatesHandler)
		r.With(middleware.ValidateRequest[*handlers.GenerateRequest]()).Post("/generate", aiHandler.GenerateHandler)
		r.Get("/contents/{id}", aiHandler.GetContentHandler)
	})
}

// NotificationRoutes also exposes the websocket stream; browsers pass the
// token as a query parameter there.
func NotificationRoutes(router *chi.Mux, notificationHandler *handlers.NotificationHandler, auth func(http.Handler) http.Handler) {
	router.Route("/api/v1/notifications", func(r chi.Router) {
		r.Use(auth)
		r.Get("/", notificationHandler.ListHandler)
		r.Post("/{id}/read", notificationHandler.MarkReadHandler)
	})
	router.With(auth).Get("/ws/notifications", notificationHandler.StreamHandler)
}
