package llm

import (
	"context"
	"time"
)

// Provider generates text from a prompt.
type Provider interface {
	GenerateText(ctx context.Context, prompt string) (*Generation, error)
	GetProviderName() string
}

// ImageProvider is implemented by providers that can also render images.
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

type Generation struct {
	Content  string
	Metadata Metadata
}

type Image struct {
	Data     []byte
	MIMEType string
	Metadata Metadata
}

type Metadata struct {
	Provider       string
	Model          string
	ProcessingTime time.Duration
}

// Settings carries provider credentials and model choices from config.
type Settings struct {
	APIKey     string
	Model      string
	ImageModel string
	Project    string
	Location   string
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Common error codes
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
	ErrCodeEmpty        = "empty_response"
)
