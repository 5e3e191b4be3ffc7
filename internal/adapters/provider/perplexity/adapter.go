package perplexity

import (
	"context"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
)

// Name is the provider name used for routing.
const Name = "perplexity"

// Adapter implements ports.ChatAdapter for Perplexity.
type Adapter struct {
	client *Client
	config Config
}

// Ensure Adapter implements ChatAdapter at compile time.
var _ ports.ChatAdapter = (*Adapter)(nil)

// NewAdapter creates a new Perplexity adapter.
func NewAdapter(config Config, opts ...ClientOption) *Adapter {
	client := NewClient(config, opts...)
	return &Adapter{
		client: client,
		config: client.config,
	}
}

// Name returns the provider name.
func (a *Adapter) Name() string {
	return Name
}

// Generate sends one chat completion request. Function declarations are
// not supported by Perplexity and are dropped.
func (a *Adapter) Generate(ctx context.Context, req ports.GenerateRequest) ports.Reply {
	if a.config.APIKey == "" {
		return ports.FailureReply(Name, errors.NewError(errors.CodeConfiguration, "api key is not set", errors.ErrMissingCredential))
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	messages := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, Message{Role: string(m.Role), Content: m.Content})
	}

	resp, err := a.client.Chat(ctx, &ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return ports.FailureReply(Name, err)
	}

	if len(resp.Choices) == 0 {
		return ports.FailureReply(Name, errors.NewError(errors.CodeProtocol, "response has no choices", errors.ErrUnexpectedResponse))
	}

	return ports.Reply{Text: resp.Choices[0].Message.Content}
}
