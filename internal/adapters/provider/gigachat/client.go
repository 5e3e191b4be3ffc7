package gigachat

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
)

// Client handles HTTP communication with the GigaChat API.
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

// WithBaseURL sets a custom chat API base URL.
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

// NewClient creates a new GigaChat client.
func NewClient(config Config, opts ...ClientOption) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	httpClient := &http.Client{Timeout: config.Timeout}
	if config.InsecureSkipVerify {
		// The public endpoints are signed by the Russian Trusted Root CA,
		// which most system trust stores do not carry.
		httpClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}

	client := &Client{
		httpClient: httpClient,
		config:     config,
		logger:     logging.Discard(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// AccessToken exchanges the configured credentials for an access token.
// Each call carries a fresh RqUID.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	form := url.Values{"scope": {c.config.Scope}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.OAuthURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", errors.NewError(errors.CodeTransport, "failed to create token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("RqUID", uuid.NewString())
	req.Header.Set("Authorization", "Basic "+c.config.AuthKey)

	resp, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.handleErrorResponse("token request", resp)
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", errors.NewError(errors.CodeProtocol, "failed to decode token response", err)
	}
	if token.AccessToken == "" {
		return "", errors.NewError(errors.CodeProtocol, "token response has no access_token", errors.ErrUnexpectedResponse)
	}

	return token.AccessToken, nil
}

// Chat sends a chat completion request authorized with token.
func (c *Client) Chat(ctx context.Context, token string, chatReq *ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, errors.NewError(errors.CodeProtocol, "failed to marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+EndpointChatCompletions, bytes.NewReader(body))
	if err != nil {
		return nil, errors.NewError(errors.CodeTransport, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse("chat request", resp)
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewError(errors.CodeProtocol, "failed to decode response", err)
	}

	return &result, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	logging.LogProviderRequest(ctx, c.logger, Name, req.URL.String())
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewError(errors.CodeTransport, "request failed", err)
	}

	logging.LogProviderResponse(ctx, c.logger, Name, resp.StatusCode, time.Since(start))
	return resp, nil
}

// handleErrorResponse renders a non-200 response with its status and a
// truncated body.
func (c *Client) handleErrorResponse(stage string, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewError(errors.CodeProtocol,
			fmt.Sprintf("%s: HTTP %d: failed to read error response", stage, resp.StatusCode), err)
	}

	return errors.WithContext(
		errors.NewError(errors.CodeProtocol,
			fmt.Sprintf("%s: HTTP %d: %s", stage, resp.StatusCode, ports.TruncateBody(body)), nil),
		"status", resp.StatusCode)
}
