// Package perplexity provides an adapter for the Perplexity chat API.
// Perplexity uses an OpenAI-compatible request format.
package perplexity

import "time"

// DefaultBaseURL is the default Perplexity API endpoint.
const DefaultBaseURL = "https://api.perplexity.ai"

// EndpointChatCompletions is appended to the base URL.
const EndpointChatCompletions = "/chat/completions"

// DefaultModel is the model used when none is configured.
const DefaultModel = "llama-3.1-sonar-small-128k-online"

// Message represents a single message in the chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the request body for chat completions.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	MaxTokens   int       `json:"max_tokens"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Usage contains token usage information from the response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionResponse is the response body from chat completions.
type ChatCompletionResponse struct {
	ID        string   `json:"id"`
	Model     string   `json:"model"`
	Choices   []Choice `json:"choices"`
	Usage     Usage    `json:"usage"`
	Citations []string `json:"citations,omitempty"`
}

// Config contains configuration for the Perplexity client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:  apiKey,
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
	}
}
