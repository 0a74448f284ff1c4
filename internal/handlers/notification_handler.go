package handlers

import (
	"errors"
	"net/http"

	"bpoc/internal/realtime"
	"bpoc/internal/repositories"
	"bpoc/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultNotificationLimit = 50

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type NotificationHandler struct {
	service NotificationService
	hub     *realtime.Hub
	logger  *zap.Logger
}

func NewNotificationHandler(service NotificationService, hub *realtime.Hub, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, hub: hub, logger: logger}
}

func (h *NotificationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	unread := r.URL.Query().Get("unread") == "true"
	list, err := h.service.List(r.Context(), callerFrom(r).UserID, unread, intQuery(r, "limit", defaultNotificationLimit))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, list)
}

func (h *NotificationHandler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	err := h.service.MarkRead(r.Context(), chi.URLParam(r, "id"), callerFrom(r).UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	utils.Success(w, http.StatusOK, map[string]bool{"read": true})
}

// StreamHandler upgrades to a websocket and keeps the connection registered
// with the hub until the client goes away. Inbound frames are ignored.
func (h *NotificationHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	userID := callerFrom(r).UserID
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := realtime.NewClient(userID, conn)
	h.hub.Register(client)
	h.logger.Debug("notification stream opened", zap.String("userId", userID))
	defer func() {
		left := h.hub.Unregister(client)
		h.logger.Debug("notification stream closed", zap.String("userId", userID), zap.Int("remaining", left))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
