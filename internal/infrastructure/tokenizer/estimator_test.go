package tokenizer

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
)

// wordEncoder counts whitespace-separated words, one token each.
type wordEncoder struct{}

func (wordEncoder) Encode(text string, _, _ []string) []int {
	return make([]int, len(strings.Fields(text)))
}

type countingLoader struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]bool
}

func (l *countingLoader) load(model string) (encoder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[model]++
	if l.fail[model] {
		return nil, errors.New("encoding unavailable")
	}
	return wordEncoder{}, nil
}

func TestCountTokens_BrandHeuristic(t *testing.T) {
	c := newCounter(DefaultConfig(), (&countingLoader{}).load)

	tests := []struct {
		name  string
		text  string
		model string
		want  int
	}{
		{"gigachat latin", strings.Repeat("a", 9), "GigaChat:latest", 2},
		{"gigachat pro cyrillic", "привет мир, как дела", "GigaChat-Pro:latest", 4},
		{"yandex lowercase", strings.Repeat("б", 45), "yandexgpt-lite", 10},
		{"yandex mixed case", "abcd", "YandexGPT", 0},
		{"floor not round", strings.Repeat("x", 8), "yandexgpt", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.CountTokens(tt.text, tt.model); got != tt.want {
				t.Errorf("CountTokens(%q, %q) = %d, want %d", tt.text, tt.model, got, tt.want)
			}
		})
	}
}

func TestCountTokens_BrandSkipsEncoder(t *testing.T) {
	loader := &countingLoader{}
	c := newCounter(DefaultConfig(), loader.load)

	c.CountTokens("hello there", "GigaChat:latest")

	if len(loader.calls) != 0 {
		t.Errorf("encoder loaded for heuristic model: %v", loader.calls)
	}
}

func TestCountTokens_EncoderPath(t *testing.T) {
	loader := &countingLoader{}
	c := newCounter(DefaultConfig(), loader.load)

	if got := c.CountTokens("one two three", "gpt-4"); got != 3 {
		t.Errorf("CountTokens() = %d, want 3", got)
	}
	if loader.calls["gpt-4"] != 1 {
		t.Errorf("expected one load of gpt-4, got %d", loader.calls["gpt-4"])
	}
}

func TestCountTokens_AliasResolvesSonar(t *testing.T) {
	loader := &countingLoader{}
	c := newCounter(DefaultConfig(), loader.load)

	c.CountTokens("a b", "llama-3.1-sonar-small-128k-online")
	c.CountTokens("a b", "llama-3.1-sonar-large-128k-online")

	if loader.calls["gpt-4"] != 1 {
		t.Errorf("sonar models should share the cached gpt-4 encoding, calls = %v", loader.calls)
	}
}

func TestCountTokens_FallbackOnError(t *testing.T) {
	loader := &countingLoader{fail: map[string]bool{"mystery-model": true}}
	c := newCounter(DefaultConfig(), loader.load)

	text := strings.Repeat("z", 11)
	for i := 0; i < 3; i++ {
		if got := c.CountTokens(text, "mystery-model"); got != 2 {
			t.Errorf("CountTokens() = %d, want 2", got)
		}
	}
	if loader.calls["mystery-model"] != 1 {
		t.Errorf("failed load should be cached, calls = %d", loader.calls["mystery-model"])
	}
}

func TestCountTokens_Empty(t *testing.T) {
	c := newCounter(DefaultConfig(), (&countingLoader{}).load)

	for _, model := range []string{"gpt-4", "GigaChat:latest", "unknown"} {
		if got := c.CountTokens("", model); got != 0 {
			t.Errorf("CountTokens(\"\", %q) = %d, want 0", model, got)
		}
	}
}

func TestCountMessagesTokens_Formula(t *testing.T) {
	c := newCounter(DefaultConfig(), (&countingLoader{fail: map[string]bool{"broken": true}}).load)
	msgs := []chat.Message{{Role: chat.RoleUser, Content: "hi"}}

	for _, model := range []string{"gpt-4", "GigaChat:latest", "yandexgpt", "broken"} {
		t.Run(model, func(t *testing.T) {
			want := c.CountTokens("user", model) + c.CountTokens("hi", model) +
				DefaultPerMessageOverhead + DefaultPerConversationOverhead
			if got := c.CountMessagesTokens(msgs, model); got != want {
				t.Errorf("CountMessagesTokens() = %d, want %d", got, want)
			}
		})
	}
}

func TestCountMessagesTokens_ConfiguredOverheads(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PerMessageOverhead = 3
	cfg.PerConversationOverhead = 0
	c := newCounter(cfg, (&countingLoader{}).load)

	msgs := []chat.Message{
		chat.NewSystemMessage("be terse"),
		chat.NewUserMessage("what is go"),
	}
	// system(1) + 2 + 3, user(1) + 3 + 3
	if got := c.CountMessagesTokens(msgs, "gpt-4"); got != 13 {
		t.Errorf("CountMessagesTokens() = %d, want 13", got)
	}
	if got := c.CountMessagesTokens(nil, "gpt-4"); got != 0 {
		t.Errorf("empty conversation = %d, want 0", got)
	}
}

func TestCounter_ConcurrentAccess(t *testing.T) {
	c := newCounter(DefaultConfig(), (&countingLoader{}).load)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = c.CountTokens("thread safety test", "gpt-4")
			}
		}()
	}
	wg.Wait()
}

func TestHeuristics(t *testing.T) {
	if got := BrandHeuristic("абвгдеёжзий"); got != 2 {
		t.Errorf("BrandHeuristic() = %d, want 2", got)
	}
	if got := CharHeuristic("абвгдеёж"); got != 2 {
		t.Errorf("CharHeuristic() = %d, want 2", got)
	}
}

func TestNewCounter_Tiktoken(t *testing.T) {
	if testing.Short() {
		t.Skip("tiktoken may download encoding data")
	}
	c := NewCounter(DefaultConfig())

	got := c.CountTokens("The quick brown fox jumps over the lazy dog.", "gpt-4")
	if got < 8 || got > 15 {
		t.Errorf("CountTokens() = %d, expected between 8 and 15", got)
	}
}
