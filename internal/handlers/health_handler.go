package handlers

import (
	"context"
	"net/http"
	"time"

	"bpoc/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"` // "ready" | "not_ready"
	Service string                    `json:"service"`
	Checks  map[string]ReadinessCheck `json:"checks"`
}

// Pinger is a dependency the readiness probe checks.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler takes named dependency checks, e.g. "database" and "redis".
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "bpoc",
	})
}

func (h *HealthHandler) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := ReadinessResponse{Status: "ready", Service: "bpoc", Checks: map[string]ReadinessCheck{}}
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			response.Checks[name] = ReadinessCheck{Status: "failed", Message: err.Error()}
			response.Status = "not_ready"
			continue
		}
		response.Checks[name] = ReadinessCheck{Status: "ok"}
	}

	if response.Status == "ready" {
		utils.JSON(w, http.StatusOK, response)
		return
	}
	utils.JSON(w, http.StatusServiceUnavailable, response)
}
