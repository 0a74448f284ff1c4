package handlers

import (
	"net/http"
	"strconv"

	"bpoc/internal/middleware"
	"bpoc/internal/services"
	"bpoc/internal/utils"

	"go.uber.org/zap"
)

// writeError maps a service error onto the envelope. Unexpected errors are
// logged and reported generically.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status, message := services.HTTPStatus(err)
	switch {
	case status == http.StatusBadGateway:
		logger.Warn("upstream failure", zap.String("path", r.URL.Path), zap.Error(err))
	case status >= http.StatusInternalServerError:
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	utils.JSONError(w, status, message)
}

func callerFrom(r *http.Request) services.Caller {
	id, _ := middleware.IdentityFrom(r.Context())
	return services.Caller{UserID: id.UserID, Role: id.Role, AgencyID: id.AgencyID}
}

func intQuery(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}
