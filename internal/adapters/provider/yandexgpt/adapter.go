package yandexgpt

import (
	"context"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
)

// Name is the provider name used for routing.
const Name = "yandexgpt"

// Adapter implements ports.ChatAdapter for YandexGPT.
type Adapter struct {
	client *Client
	config Config
}

// Ensure Adapter implements ChatAdapter at compile time.
var _ ports.ChatAdapter = (*Adapter)(nil)

// NewAdapter creates a new YandexGPT adapter.
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

// Generate sends one completion request. Temperature and topP above the
// API maximum are clamped.
func (a *Adapter) Generate(ctx context.Context, req ports.GenerateRequest) ports.Reply {
	if a.config.APIKey == "" {
		return ports.FailureReply(Name, errors.NewError(errors.CodeConfiguration, "api key is not set", errors.ErrMissingCredential))
	}
	if a.config.FolderID == "" {
		return ports.FailureReply(Name, errors.NewError(errors.CodeConfiguration, "folder id is not set", errors.ErrMissingCredential))
	}

	resp, err := a.client.Complete(ctx, a.buildRequest(req))
	if err != nil {
		return ports.FailureReply(Name, err)
	}

	if len(resp.Result.Alternatives) == 0 {
		return ports.FailureReply(Name, errors.NewError(errors.CodeProtocol, "response has no alternatives", errors.ErrUnexpectedResponse))
	}

	return ports.Reply{Text: resp.Result.Alternatives[0].Message.Text}
}

func (a *Adapter) buildRequest(req ports.GenerateRequest) *CompletionRequest {
	messages := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, Message{Role: string(m.Role), Text: m.Content})
	}

	return &CompletionRequest{
		ModelURI: ModelURI(a.config.FolderID, req.Model),
		CompletionOptions: CompletionOptions{
			Stream:      false,
			Temperature: clamp(req.Temperature),
			TopP:        clamp(req.TopP),
			MaxTokens:   req.MaxTokens,
		},
		Messages: messages,
	}
}
