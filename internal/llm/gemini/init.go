package gemini

import "bpoc/internal/llm"

// Register Gemini provider on package import
func init() {
	llm.RegisterProvider("gemini", func(s llm.Settings) (llm.Provider, error) {
		config, err := NewConfig(s)
		if err != nil {
			return nil, err
		}
		return NewClient(config)
	})
}
