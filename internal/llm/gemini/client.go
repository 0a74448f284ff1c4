package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"bpoc/internal/llm"
)

const providerName = "gemini"

// Client talks to the Gemini API for both text and images.
type Client struct {
	client *genai.Client
	config *Config
}

func NewClient(config *Config) (*Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeAPIKey,
			Message:  "Failed to create Gemini client",
			Err:      err,
		}
	}
	return &Client{client: client, config: config}, nil
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (*llm.Generation, error) {
	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.config.Model, genai.Text(prompt), nil)
	if err != nil {
		return nil, classify(err, "Failed to generate content")
	}
	text := responseText(result)
	if text == "" {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeEmpty,
			Message:  "Empty response generated",
		}
	}
	return &llm.Generation{
		Content: text,
		Metadata: llm.Metadata{
			Provider:       providerName,
			Model:          c.config.Model,
			ProcessingTime: time.Since(start),
		},
	}, nil
}

func (c *Client) GenerateImage(ctx context.Context, prompt string) (*llm.Image, error) {
	start := time.Now()
	result, err := c.client.Models.GenerateImages(ctx, c.config.ImageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
	})
	if err != nil {
		return nil, classify(err, "Failed to generate image")
	}
	if result == nil || len(result.GeneratedImages) == 0 ||
		result.GeneratedImages[0].Image == nil || len(result.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, &llm.ProviderError{
			Provider: providerName,
			Code:     llm.ErrCodeEmpty,
			Message:  "No image generated",
		}
	}
	img := result.GeneratedImages[0].Image
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return &llm.Image{
		Data:     img.ImageBytes,
		MIMEType: mime,
		Metadata: llm.Metadata{
			Provider:       providerName,
			Model:          c.config.ImageModel,
			ProcessingTime: time.Since(start),
		},
	}, nil
}

func (c *Client) GetProviderName() string {
	return providerName
}

func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

func classify(err error, message string) *llm.ProviderError {
	code := llm.ErrCodeServiceDown
	var apiErr genai.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = llm.ErrCodeTimeout
	case errors.As(err, &apiErr):
		code = codeForStatus(apiErr.Code)
	case strings.Contains(err.Error(), "429"):
		code = llm.ErrCodeRateLimit
	}
	return &llm.ProviderError{Provider: providerName, Code: code, Message: message, Err: err}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return llm.ErrCodeRateLimit
	case http.StatusUnauthorized, http.StatusForbidden:
		return llm.ErrCodeAPIKey
	case http.StatusBadRequest:
		return llm.ErrCodeInvalidInput
	case http.StatusGatewayTimeout:
		return llm.ErrCodeTimeout
	default:
		return llm.ErrCodeServiceDown
	}
}
