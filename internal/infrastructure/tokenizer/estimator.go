// Package tokenizer provides token counting infrastructure using tiktoken.
// It implements the domain TokenCounter interface with per-model encodings
// and character heuristics for models without a public tokenizer.
package tokenizer

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
	"github.com/jbctechsolutions/playground/internal/domain/provider"
)

// Default framing overheads, in tokens.
const (
	DefaultPerMessageOverhead      = 4
	DefaultPerConversationOverhead = 2
)

// Alias maps models whose name contains Match onto the tiktoken model Model.
type Alias struct {
	Match string `yaml:"match"`
	Model string `yaml:"model"`
}

// Config controls model resolution and overheads.
type Config struct {
	// HeuristicBrands are case-insensitive substrings of model ids that have
	// no public tokenizer. Such models are counted as floor(chars / 4.5).
	HeuristicBrands []string `yaml:"heuristic_brands"`
	// Aliases are checked in order; the first match decides the encoding.
	Aliases                 []Alias `yaml:"aliases"`
	PerMessageOverhead      int     `yaml:"per_message_overhead"`
	PerConversationOverhead int     `yaml:"per_conversation_overhead"`
}

// DefaultConfig returns the built-in tokenizer configuration.
func DefaultConfig() Config {
	return Config{
		HeuristicBrands:         []string{"gigachat", "yandex"},
		Aliases:                 []Alias{{Match: "sonar", Model: "gpt-4"}},
		PerMessageOverhead:      DefaultPerMessageOverhead,
		PerConversationOverhead: DefaultPerConversationOverhead,
	}
}

type encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

type loaderFunc func(model string) (encoder, error)

func tiktokenLoader(model string) (encoder, error) {
	return tiktoken.EncodingForModel(model)
}

// Counter counts tokens per model. Encodings are loaded lazily and cached,
// including load failures, so a missing encoding is only attempted once.
// Counter is safe for concurrent use.
type Counter struct {
	cfg  Config
	load loaderFunc

	mu       sync.RWMutex
	encoders map[string]encoder
	failed   map[string]error
}

// Ensure Counter implements provider.TokenCounter.
var _ provider.TokenCounter = (*Counter)(nil)

// NewCounter creates a Counter backed by tiktoken.
func NewCounter(cfg Config) *Counter {
	return newCounter(cfg, tiktokenLoader)
}

func newCounter(cfg Config, load loaderFunc) *Counter {
	cfg.HeuristicBrands = normalizeBrands(cfg.HeuristicBrands)
	return &Counter{
		cfg:      cfg,
		load:     load,
		encoders: make(map[string]encoder),
		failed:   make(map[string]error),
	}
}

// CountTokens returns the token count for text under model's tokenizer.
func (c *Counter) CountTokens(text, model string) int {
	if text == "" {
		return 0
	}
	if c.usesHeuristic(model) {
		return BrandHeuristic(text)
	}

	enc, err := c.encoderFor(c.resolve(model))
	if err != nil {
		return CharHeuristic(text)
	}
	return len(enc.Encode(text, nil, nil))
}

// CountMessagesTokens sums role and content tokens plus framing overheads.
func (c *Counter) CountMessagesTokens(messages []chat.Message, model string) int {
	total := c.cfg.PerConversationOverhead
	for _, m := range messages {
		total += c.CountTokens(m.Role.String(), model)
		total += c.CountTokens(m.Content, model)
		total += c.cfg.PerMessageOverhead
	}
	return total
}

func (c *Counter) usesHeuristic(model string) bool {
	for _, brand := range c.cfg.HeuristicBrands {
		if brand != "" && provider.ContainsFold(model, brand) {
			return true
		}
	}
	return false
}

func (c *Counter) resolve(model string) string {
	for _, a := range c.cfg.Aliases {
		if a.Match != "" && provider.ContainsFold(model, a.Match) {
			return a.Model
		}
	}
	return model
}

func (c *Counter) encoderFor(model string) (encoder, error) {
	c.mu.RLock()
	enc, ok := c.encoders[model]
	err := c.failed[model]
	c.mu.RUnlock()
	if ok {
		return enc, nil
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if enc, ok := c.encoders[model]; ok {
		return enc, nil
	}
	enc, err = c.load(model)
	if err != nil {
		c.failed[model] = err
		return nil, err
	}
	c.encoders[model] = enc
	return enc, nil
}

// BrandHeuristic approximates tokens for mixed Cyrillic/Latin text as
// floor(chars / 4.5).
func BrandHeuristic(text string) int {
	return utf8.RuneCountInString(text) * 2 / 9
}

// CharHeuristic is the universal fallback of floor(chars / 4).
func CharHeuristic(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// normalizeBrands lower-cases brand tokens and drops blanks.
func normalizeBrands(brands []string) []string {
	out := make([]string, 0, len(brands))
	for _, b := range brands {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			out = append(out, b)
		}
	}
	return out
}
