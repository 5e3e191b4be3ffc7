package provider

import "github.com/jbctechsolutions/playground/internal/domain/chat"

// TokenCounter counts tokens for a given model. Implementations never fail;
// they fall back to character heuristics instead.
type TokenCounter interface {
	// CountTokens returns the token count of text under model's tokenizer.
	CountTokens(text, model string) int
	// CountMessagesTokens returns the token count of a whole conversation,
	// including per-message and per-conversation framing overhead.
	CountMessagesTokens(messages []chat.Message, model string) int
}
