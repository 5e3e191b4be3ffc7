package duckduckgo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/chat"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
)

// Name identifies the search engine in logs and spans.
const Name = "duckduckgo"

// Client queries the Instant Answer API.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *logging.Logger
}

// Ensure Client implements SearchPort at compile time.
var _ ports.SearchPort = (*Client)(nil)

// ClientOption is a functional option for configuring the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
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

// NewClient creates a new search client.
func NewClient(config Config, opts ...ClientOption) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultMaxResults
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

// Search returns up to limit results for query, abstract first. A limit of
// zero or less uses the configured maximum. Failures produce a single
// record titled ErrorTitle describing the problem.
func (c *Client) Search(ctx context.Context, query string, limit int) []chat.SearchResult {
	if limit <= 0 {
		limit = c.config.MaxResults
	}

	resp, err := c.fetch(ctx, query)
	if err != nil {
		logging.LogSearchFailure(ctx, c.logger, query, err)
		return []chat.SearchResult{{Title: ErrorTitle, Snippet: describe(err)}}
	}

	return collect(resp, limit)
}

func (c *Client) fetch(ctx context.Context, query string) (*Response, error) {
	params := url.Values{
		"q":             {query},
		"format":        {"json"},
		"no_html":       {"1"},
		"skip_disambig": {"1"},
	}
	endpoint := c.config.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewError(errors.CodeTransport, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	logging.LogProviderRequest(ctx, c.logger, Name, endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewError(errors.CodeTransport, "request failed", err)
	}
	defer resp.Body.Close()

	logging.LogProviderResponse(ctx, c.logger, Name, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.NewError(errors.CodeProtocol, "failed to decode response", err)
	}

	return &result, nil
}

// handleErrorResponse renders a non-200 response with its status and a
// truncated body.
func handleErrorResponse(resp *http.Response) error {
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

// collect flattens the abstract and related topics into at most limit results.
func collect(resp *Response, limit int) []chat.SearchResult {
	results := make([]chat.SearchResult, 0, limit)

	abstract := resp.AbstractText
	if abstract == "" {
		abstract = resp.Abstract
	}
	if abstract != "" {
		results = append(results, chat.SearchResult{
			Title:   resp.Heading,
			URL:     resp.AbstractURL,
			Snippet: abstract,
		})
	}

	var walk func(topics []Topic)
	walk = func(topics []Topic) {
		for _, topic := range topics {
			if len(results) >= limit {
				return
			}
			if len(topic.Topics) > 0 {
				walk(topic.Topics)
				continue
			}
			if topic.Text == "" {
				continue
			}
			results = append(results, chat.SearchResult{
				Title:   topicTitle(topic.Text),
				URL:     topic.FirstURL,
				Snippet: topic.Text,
			})
		}
	}
	walk(resp.RelatedTopics)

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// topicTitle takes the part of a topic text before its " - " separator.
func topicTitle(text string) string {
	if title, _, found := strings.Cut(text, " - "); found {
		return title
	}
	return text
}

func describe(err error) string {
	var pe *errors.PlaygroundError
	if errors.As(err, &pe) {
		return pe.Describe()
	}
	return err.Error()
}
