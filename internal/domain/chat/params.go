package chat

import (
	"encoding/json"
	"fmt"
)

// Default generation parameters applied to new sessions and agents.
const (
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0
	DefaultMaxTokens   = 4000
)

// Parameters controls a single generation request.
type Parameters struct {
	Model       string            `json:"model"`
	Temperature float64           `json:"temperature"`
	TopP        float64           `json:"top_p"`
	MaxTokens   int               `json:"max_tokens"`
	Functions   []json.RawMessage `json:"functions,omitempty"`
	WebSearch   bool              `json:"web_search"`
}

// DefaultParameters returns parameters for the given model with default sampling values.
func DefaultParameters(model string) Parameters {
	return Parameters{
		Model:       model,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Validate checks that the parameters are usable. Values above a provider's
// accepted range are not rejected here; adapters clamp them.
func (p Parameters) Validate() error {
	if p.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if p.Temperature < 0 {
		return fmt.Errorf("temperature must be non-negative, got %v", p.Temperature)
	}
	if p.TopP < 0 {
		return fmt.Errorf("top_p must be non-negative, got %v", p.TopP)
	}
	if p.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive, got %d", p.MaxTokens)
	}
	return nil
}

// ParseFunctions decodes a JSON array of function definitions. Blank input
// yields no functions.
func ParseFunctions(raw string) ([]json.RawMessage, error) {
	if raw == "" {
		return nil, nil
	}
	var fns []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fns); err != nil {
		return nil, fmt.Errorf("functions must be a JSON array: %w", err)
	}
	return fns, nil
}
