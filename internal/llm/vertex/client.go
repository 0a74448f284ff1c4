// Package vertex serves text generation through Vertex AI.
package vertex

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"

	"bpoc/internal/llm"
)

const (
	providerName    = "vertex"
	defaultModel    = "gemini-1.5-flash"
	defaultLocation = "us-central1"
)

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type Client struct {
	client *genai.Client
	model  generator
	name   string
}

func init() {
	llm.RegisterProvider(providerName, func(s llm.Settings) (llm.Provider, error) {
		return NewClient(context.Background(), s)
	})
}

// NewClient connects with application default credentials.
func NewClient(ctx context.Context, s llm.Settings) (*Client, error) {
	if s.Project == "" {
		return nil, errors.New("VERTEX_PROJECT_ID environment variable is required")
	}
	location, model := s.Location, s.Model
	if location == "" {
		location = defaultLocation
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, s.Project, location)
	if err != nil {
		return nil, &llm.ProviderError{Provider: providerName, Code: llm.ErrCodeAPIKey, Message: "Failed to create Vertex AI client", Err: err}
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(0.4)
	gm.SetMaxOutputTokens(2048)
	return &Client{client: client, model: gm, name: model}, nil
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (*llm.Generation, error) {
	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		code := llm.ErrCodeServiceDown
		if errors.Is(err, context.DeadlineExceeded) {
			code = llm.ErrCodeTimeout
		}
		return nil, &llm.ProviderError{Provider: providerName, Code: code, Message: "Failed to generate content", Err: err}
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &llm.ProviderError{Provider: providerName, Code: llm.ErrCodeEmpty, Message: "No response candidates returned"}
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		return nil, &llm.ProviderError{Provider: providerName, Code: llm.ErrCodeEmpty, Message: "Empty response generated"}
	}
	return &llm.Generation{
		Content:  content,
		Metadata: llm.Metadata{Provider: providerName, Model: c.name, ProcessingTime: time.Since(start)},
	}, nil
}

func (c *Client) GetProviderName() string { return providerName }

func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
