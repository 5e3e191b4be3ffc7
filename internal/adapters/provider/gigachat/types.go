// Package gigachat provides an adapter for the Sber GigaChat API.
// Every chat call first exchanges the client credentials for an access
// token at the OAuth endpoint.
package gigachat

import (
	"encoding/json"
	"time"
)

// Default endpoints.
const (
	DefaultOAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	DefaultBaseURL  = "https://gigachat.devices.sberbank.ru/api/v1"
	DefaultScope    = "GIGACHAT_API_PERS"
)

// EndpointChatCompletions is appended to the base URL.
const EndpointChatCompletions = "/chat/completions"

// Message is a single chat message in GigaChat wire format.
type Message struct {
	Role         string        `json:"role"`
	Content      string        `json:"content"`
	FunctionCall *FunctionCall `json:"function_call,omitempty"`
}

// FunctionCall is a model request to invoke one of the declared functions.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ChatRequest is the request body for chat completions.
type ChatRequest struct {
	Model        string            `json:"model"`
	Messages     []Message         `json:"messages"`
	Temperature  float64           `json:"temperature"`
	TopP         float64           `json:"top_p"`
	MaxTokens    int               `json:"max_tokens"`
	Functions    []json.RawMessage `json:"functions,omitempty"`
	FunctionCall string            `json:"function_call,omitempty"`
}

// Choice is a single completion alternative.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Usage contains the token usage reported by GigaChat.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the response body from chat completions.
type ChatResponse struct {
	Choices []Choice `json:"choices"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Usage   Usage    `json:"usage"`
}

// TokenResponse is the OAuth endpoint response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	// ExpiresAt is a unix timestamp in milliseconds.
	ExpiresAt int64 `json:"expires_at"`
}

// Config contains configuration for the GigaChat client.
type Config struct {
	// AuthKey is the base64 encoded client id and secret.
	AuthKey            string
	Scope              string
	OAuthURL           string
	BaseURL            string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// DefaultConfig returns a Config with default endpoints for authKey.
func DefaultConfig(authKey string) Config {
	return Config{
		AuthKey:  authKey,
		Scope:    DefaultScope,
		OAuthURL: DefaultOAuthURL,
		BaseURL:  DefaultBaseURL,
		Timeout:  30 * time.Second,
	}
}
