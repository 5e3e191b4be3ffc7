package ports

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
)

// ErrorMarker prefixes reply text produced for a failed provider call.
const ErrorMarker = "Error:"

// MaxErrorBody bounds how much of a provider's error body is echoed into reply text.
const MaxErrorBody = 500

// GenerateRequest is the provider-neutral input to a chat adapter.
type GenerateRequest struct {
	Model       string
	Messages    []chat.Message
	Temperature float64
	TopP        float64
	MaxTokens   int
	Functions   []json.RawMessage
}

// Reply is the outcome of a chat call. Text is always set: on failure it
// starts with ErrorMarker and describes the problem, and Err holds the cause.
type Reply struct {
	Text string
	Err  error
}

// Failed reports whether the call failed.
func (r Reply) Failed() bool {
	return r.Err != nil
}

// ChatAdapter is the capability every chat provider implements. Generate
// never returns a Go error; failures are rendered into the reply.
type ChatAdapter interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest) Reply
}

// SearchPort retrieves web search results. Failures are returned as a
// single synthetic result rather than an error.
type SearchPort interface {
	Search(ctx context.Context, query string, limit int) []chat.SearchResult
	// FormatResults renders results as a text block for the system prompt.
	FormatResults(query string, results []chat.SearchResult) string
}

// FailureReply renders err as user-visible reply text for provider.
func FailureReply(provider string, err error) Reply {
	return Reply{
		Text: fmt.Sprintf("%s %s: %v", ErrorMarker, provider, err),
		Err:  err,
	}
}

// TruncateBody shortens a raw response body for inclusion in error text.
func TruncateBody(body []byte) string {
	if len(body) <= MaxErrorBody {
		return string(body)
	}
	// Back off to a rune boundary; a rune is at most utf8.UTFMax bytes.
	n := MaxErrorBody
	for i := 1; i < utf8.UTFMax && n > 0 && !utf8.RuneStart(body[n]); i++ {
		n--
	}
	return strings.ToValidUTF8(string(body[:n]), "\uFFFD") + "..."
}
