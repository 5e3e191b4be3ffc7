package duckduckgo

import (
	"fmt"
	"strings"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
)

// FormatResults renders results as a numbered block for inclusion in a
// system prompt.
func FormatResults(query string, results []chat.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No web search results found for %q.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Web search results for %q:\n", query)
	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, r.Title)
		if r.URL != "" {
			fmt.Fprintf(&b, "   URL: %s\n", r.URL)
		}
		if r.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", r.Snippet)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatResults implements ports.SearchPort.
func (c *Client) FormatResults(query string, results []chat.SearchResult) string {
	return FormatResults(query, results)
}
