// Package yandexgpt provides an adapter for the Yandex Foundation Models
// text completion API.
package yandexgpt

import "time"

// DefaultBaseURL is the default Foundation Models endpoint.
const DefaultBaseURL = "https://llm.api.cloud.yandex.net/foundationModels/v1"

// EndpointCompletion is appended to the base URL.
const EndpointCompletion = "/completion"

// MaxSamplingValue is the upper bound the API accepts for temperature and topP.
const MaxSamplingValue = 1.0

// Message is a single message in Yandex wire format.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// CompletionOptions controls generation.
type CompletionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
	MaxTokens   int     `json:"maxTokens"`
}

// CompletionRequest is the request body for the completion endpoint.
type CompletionRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions CompletionOptions `json:"completionOptions"`
	Messages          []Message         `json:"messages"`
}

// Alternative is one generated answer.
type Alternative struct {
	Message Message `json:"message"`
	Status  string  `json:"status"`
}

// Usage contains the token usage reported by the API. Counts arrive as strings.
type Usage struct {
	InputTextTokens  string `json:"inputTextTokens"`
	CompletionTokens string `json:"completionTokens"`
	TotalTokens      string `json:"totalTokens"`
}

// CompletionResponse is the response body from the completion endpoint.
type CompletionResponse struct {
	Result struct {
		Alternatives []Alternative `json:"alternatives"`
		Usage        Usage         `json:"usage"`
		ModelVersion string        `json:"modelVersion"`
	} `json:"result"`
}

// Config contains configuration for the YandexGPT client.
type Config struct {
	APIKey   string
	FolderID string
	BaseURL  string
	Timeout  time.Duration
}

// DefaultConfig returns a Config with the default endpoint.
func DefaultConfig(apiKey, folderID string) Config {
	return Config{
		APIKey:   apiKey,
		FolderID: folderID,
		BaseURL:  DefaultBaseURL,
		Timeout:  30 * time.Second,
	}
}
