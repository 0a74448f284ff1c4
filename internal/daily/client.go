// Package daily is a small client for the Daily.co REST API covering room
// provisioning, deletion and presence.
package daily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.daily.co/v1"

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("daily api: status %d: %s", e.StatusCode, e.Body)
}

// NotFound reports whether the provider has no such room.
func (e *APIError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client. Empty baseURL falls back to DefaultBaseURL and a
// nil httpClient to one with a 10s timeout.
func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{apiKey: apiKey, baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type RoomProperties struct {
	Exp               int64  `json:"exp,omitempty"`
	EnableChat        bool   `json:"enable_chat"`
	EnableScreenshare bool   `json:"enable_screenshare"`
	EnablePrejoinUI   bool   `json:"enable_prejoin_ui"`
	EnableRecording   string `json:"enable_recording,omitempty"`
	EjectAtRoomExp    bool   `json:"eject_at_room_exp"`
	StartVideoOff     bool   `json:"start_video_off"`
	MaxParticipants   int    `json:"max_participants,omitempty"`
}

type CreateRoomRequest struct {
	Name       string         `json:"name"`
	Privacy    string         `json:"privacy"`
	Properties RoomProperties `json:"properties"`
}

type Room struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Privacy   string    `json:"privacy"`
	CreatedAt time.Time `json:"created_at"`
}

type PresenceParticipant struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"`
	JoinTime time.Time `json:"joinTime"`
	Duration int       `json:"duration"`
}

type Presence struct {
	TotalCount int                   `json:"total_count"`
	Data       []PresenceParticipant `json:"data"`
}

// CreateRoom provisions a private room named req.Name.
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (*Room, error) {
	if req.Privacy == "" {
		req.Privacy = "private"
	}
	var room Room
	if err := c.do(ctx, http.MethodPost, "/rooms", req, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (c *Client) DeleteRoom(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/rooms/"+url.PathEscape(name), nil, nil)
}

func (c *Client) GetPresence(ctx context.Context, name string) (*Presence, error) {
	var presence Presence
	if err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(name)+"/presence", nil, &presence); err != nil {
		return nil, err
	}
	return &presence, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("daily %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
