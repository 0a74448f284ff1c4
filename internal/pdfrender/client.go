// Package pdfrender calls an HTML-to-PDF rendering service.
package pdfrender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxPDFBytes = 20 << 20

type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{url: url, httpClient: httpClient}
}

type renderRequest struct {
	HTML   string `json:"html"`
	Format string `json:"format"`
}

// Render posts the document and returns the PDF bytes.
func (c *Client) Render(ctx context.Context, html string) ([]byte, error) {
	body, err := json.Marshal(renderRequest{HTML: html, Format: "A4"})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	if len(data) > maxPDFBytes {
		return nil, fmt.Errorf("rendered pdf exceeds %d bytes", maxPDFBytes)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, fmt.Errorf("renderer did not return a pdf")
	}
	return data, nil
}
