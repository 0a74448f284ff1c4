package gemini

import (
	"errors"

	"bpoc/internal/llm"
)

const (
	defaultModel      = "gemini-2.5-flash"
	defaultImageModel = "imagen-3.0-generate-002"
)

// holds Gemini-specific configuration
type Config struct {
	APIKey     string
	Model      string
	ImageModel string
	BaseURL    string
}

func NewConfig(s llm.Settings) (*Config, error) {
	if s.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}
	cfg := &Config{APIKey: s.APIKey, Model: s.Model, ImageModel: s.ImageModel}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaultImageModel
	}
	return cfg, nil
}
