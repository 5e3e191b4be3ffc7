// Package duckduckgo provides a web search adapter over the DuckDuckGo
// Instant Answer API.
package duckduckgo

import "time"

// DefaultBaseURL is the Instant Answer API endpoint.
const DefaultBaseURL = "https://api.duckduckgo.com/"

// DefaultMaxResults caps the results returned when no limit is given.
const DefaultMaxResults = 5

// ErrorTitle is the title of the synthetic record returned on failure.
const ErrorTitle = "Search error"

// Topic is a related topic entry. Group entries carry Name and nested
// Topics instead of Text and FirstURL.
type Topic struct {
	Text     string  `json:"Text"`
	FirstURL string  `json:"FirstURL"`
	Name     string  `json:"Name,omitempty"`
	Topics   []Topic `json:"Topics,omitempty"`
}

// Response is the subset of the Instant Answer response the adapter reads.
type Response struct {
	Heading       string  `json:"Heading"`
	Abstract      string  `json:"Abstract"`
	AbstractText  string  `json:"AbstractText"`
	AbstractURL   string  `json:"AbstractURL"`
	AbstractSrc   string  `json:"AbstractSource"`
	RelatedTopics []Topic `json:"RelatedTopics"`
}

// Config contains configuration for the search client.
type Config struct {
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		MaxResults: DefaultMaxResults,
		Timeout:    30 * time.Second,
	}
}
