package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bpoc/internal/middleware"
	"bpoc/internal/models"
	"bpoc/internal/realtime"
	"bpoc/internal/repositories"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotificationList(t *testing.T) {
	svc := &mockNotificationService{listFn: func(_ context.Context, recipientID string, unreadOnly bool, limit int) ([]models.Notification, error) {
		assert.Equal(t, candidate.UserID, recipientID)
		assert.True(t, unreadOnly)
		assert.Equal(t, 5, limit)
		return []models.Notification{{Title: "Interview scheduled"}}, nil
	}}
	h := NewNotificationHandler(svc, realtime.NewHub(), zap.NewNop())

	rec := serve(http.HandlerFunc(h.ListHandler), request(http.MethodGet, "/?unread=true&limit=5", "", candidate, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Interview scheduled")
}

func TestNotificationMarkRead(t *testing.T) {
	svc := &mockNotificationService{markReadFn: func(_ context.Context, id, recipientID string) error {
		if id == "missing" {
			return fmt.Errorf("notification %s: %w", id, repositories.ErrNotFound)
		}
		return nil
	}}
	h := NewNotificationHandler(svc, realtime.NewHub(), zap.NewNop())

	rec := serve(http.HandlerFunc(h.MarkReadHandler), request(http.MethodPost, "/", "", candidate, map[string]string{"id": "n1"}))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(http.HandlerFunc(h.MarkReadHandler), request(http.MethodPost, "/", "", candidate, map[string]string{"id": "missing"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNotificationStreamRegistersWithHub(t *testing.T) {
	hub := realtime.NewHub()
	h := NewNotificationHandler(&mockNotificationService{}, hub, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := middleware.WithIdentity(r.Context(), candidate)
		h.StreamHandler(w, r.WithContext(ctx))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.ConnectionCount(candidate.UserID) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ConnectionCount(candidate.UserID) == 0 }, time.Second, 10*time.Millisecond)
}
