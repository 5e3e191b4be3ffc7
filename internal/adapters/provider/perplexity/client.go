package perplexity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
)

// Client handles HTTP communication with the Perplexity API.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *logging.Logger
}

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.config.Timeout = timeout
		c.httpClient.Timeout = timeout
	}
}

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.config.BaseURL = baseURL
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Perplexity client.
func NewClient(config Config, opts ...ClientOption) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
		logger:     logging.Discard(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Chat sends a chat completion request.
func (c *Client) Chat(ctx context.Context, chatReq *ChatCompletionRequest) (*ChatCompletionResponse, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, errors.NewError(errors.CodeProtocol, "failed to marshal request", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, EndpointChatCompletions, body)
	if err != nil {
		return nil, err
	}

	logging.LogProviderRequest(ctx, c.logger, Name, req.URL.String())
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewError(errors.CodeTransport, "request failed", err)
	}
	defer resp.Body.Close()

	logging.LogProviderResponse(ctx, c.logger, Name, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var result ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewError(errors.CodeProtocol, "failed to decode response", err)
	}

	return &result, nil
}

// newRequest creates a new HTTP request with required headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewError(errors.CodeTransport, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	return req, nil
}

func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewError(errors.CodeProtocol,
			fmt.Sprintf("HTTP %d: failed to read error response", resp.StatusCode), err)
	}

	return errors.WithContext(
		errors.NewError(errors.CodeProtocol,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, ports.TruncateBody(body)), nil),
		"status", resp.StatusCode)
}
