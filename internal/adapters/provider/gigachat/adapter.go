package gigachat

import (
	"context"
	"fmt"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
)

// Name is the provider name used for routing.
const Name = "gigachat"

// Adapter implements ports.ChatAdapter for GigaChat.
type Adapter struct {
	client *Client
	config Config
}

// Ensure Adapter implements ChatAdapter at compile time.
var _ ports.ChatAdapter = (*Adapter)(nil)

// NewAdapter creates a new GigaChat adapter.
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

// Generate obtains an access token and sends one chat completion request.
func (a *Adapter) Generate(ctx context.Context, req ports.GenerateRequest) ports.Reply {
	if a.config.AuthKey == "" {
		return ports.FailureReply(Name, errors.NewError(errors.CodeConfiguration, "auth key is not set", errors.ErrMissingCredential))
	}

	token, err := a.client.AccessToken(ctx)
	if err != nil {
		return ports.FailureReply(Name, err)
	}

	resp, err := a.client.Chat(ctx, token, buildRequest(req))
	if err != nil {
		return ports.FailureReply(Name, err)
	}

	if len(resp.Choices) == 0 {
		return ports.FailureReply(Name, errors.NewError(errors.CodeProtocol, "response has no choices", errors.ErrUnexpectedResponse))
	}

	return ports.Reply{Text: replyText(resp.Choices[0].Message)}
}

func buildRequest(req ports.GenerateRequest) *ChatRequest {
	messages := make([]Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, Message{Role: string(m.Role), Content: m.Content})
	}

	chatReq := &ChatRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	}
	if len(req.Functions) > 0 {
		chatReq.Functions = req.Functions
		chatReq.FunctionCall = "auto"
	}
	return chatReq
}

// replyText returns the message content, or the rendered function call when
// the model answered with a call and no text.
func replyText(m Message) string {
	if m.Content != "" || m.FunctionCall == nil {
		return m.Content
	}
	return fmt.Sprintf("function_call: %s(%s)", m.FunctionCall.Name, string(m.FunctionCall.Arguments))
}
