package routers

import (
	"net/http"
	"time"

	"bpoc/internal/handlers"
	"bpoc/internal/metrics"
	appmw "bpoc/internal/middleware"
	"bpoc/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Handlers bundles every HTTP handler the API serves.
type Handlers struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Interview    *handlers.InterviewHandler
	Room         *handlers.RoomHandler
	Directory    *handlers.DirectoryHandler
	Pipeline     *handlers.PipelineHandler
	Offer        *handlers.OfferHandler
	Campaign     *handlers.CampaignHandler
	AI           *handlers.AIHandler
	Notification *handlers.NotificationHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func New(h Handlers, opts Options) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(timeout))
	router.Use(metrics.Middleware)

	auth := appmw.Authenticate(opts.JWTSecret)

	HealthRoutes(router, h.Health)
	AuthRoutes(router, h.Auth, auth)
	InterviewRoutes(router, h.Interview, h.Room, auth)
	DirectoryRoutes(router, h.Directory, h.AI, auth)
	ApplicationRoutes(router, h.Pipeline, h.Directory, auth)
	OfferRoutes(router, h.Offer, auth)
	CampaignRoutes(router, h.Campaign, auth)
	AIRoutes(router, h.AI, auth)
	NotificationRoutes(router, h.Notification, auth)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.JSONError(w, http.StatusNotFound, "route not found")
	})
	return router
}
