// Package dispatch turns a normalized chat request into one provider call
// with token and cost accounting.
package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	appProvider "github.com/jbctechsolutions/playground/internal/application/provider"
	"github.com/jbctechsolutions/playground/internal/domain/chat"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
	"github.com/jbctechsolutions/playground/internal/domain/provider"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
	"github.com/jbctechsolutions/playground/internal/infrastructure/tracing"
)

// DefaultSearchLimit is the number of search results requested per dispatch.
const DefaultSearchLimit = 5

// Request is a single generation request.
type Request struct {
	Model       string
	Messages    []chat.Message
	Temperature float64
	TopP        float64
	MaxTokens   int
	Files       []chat.FilePreview
	Functions   []json.RawMessage
	WebSearch   bool
	// Instructions are optional formatting instructions appended to the
	// system message.
	Instructions string
}

// Dispatcher routes requests to chat adapters. It has no persistence side
// effects and is safe for concurrent use.
type Dispatcher struct {
	router      *appProvider.Router
	counter     provider.TokenCounter
	costs       *provider.CostCalculator
	search      ports.SearchPort
	searchLimit int
	logger      *logging.Logger
	tracer      *tracing.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSearch enables web search through s.
func WithSearch(s ports.SearchPort, limit int) Option {
	return func(d *Dispatcher) {
		d.search = s
		if limit > 0 {
			d.searchLimit = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(d *Dispatcher) {
		d.tracer = tracer
	}
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(router *appProvider.Router, counter provider.TokenCounter, costs *provider.CostCalculator, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		router:      router,
		counter:     counter,
		costs:       costs,
		searchLimit: DefaultSearchLimit,
		logger:      logging.Discard(),
		tracer:      tracing.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// GenerateResponse folds file previews and search results into the
// conversation, calls the routed adapter once and accounts tokens and cost.
// It always returns a result; failures are carried in ReplyText.
func (d *Dispatcher) GenerateResponse(ctx context.Context, req Request) *chat.DispatchResult {
	start := time.Now()
	ctx = logging.WithModel(ctx, req.Model)
	ctx, span := d.tracer.StartDispatchSpan(ctx, req.Model, req.WebSearch)
	span.SetFileCount(len(req.Files))

	// The search query is the user's own text, without attachments.
	query := ""
	if i := chat.LastIndex(req.Messages, chat.RoleUser); i >= 0 {
		query = req.Messages[i].Content
	}

	messages := FoldFiles(req.Messages, req.Files)
	messages = appendToSystem(messages, req.Instructions)

	inputTokens := d.counter.CountMessagesTokens(messages, req.Model)

	if req.WebSearch && d.search != nil && query != "" {
		messages = appendToSystem(messages, d.runSearch(ctx, query))
	}

	adapter, selection, err := d.router.Select(req.Model)
	span.SetProvider(selection.ProviderName)
	logging.LogDispatchStart(ctx, d.logger, selection.ProviderName, req.Model, inputTokens, req.WebSearch)

	var reply ports.Reply
	if err != nil {
		reply = ports.FailureReply(selection.ProviderName, errors.NewError(errors.CodeConfiguration, "no adapter registered", err))
	} else {
		reply = d.callAdapter(ctx, adapter, ports.GenerateRequest{
			Model:       req.Model,
			Messages:    messages,
			Temperature: req.Temperature,
			TopP:        req.TopP,
			MaxTokens:   req.MaxTokens,
			Functions:   req.Functions,
		})
	}

	outputTokens := d.counter.CountTokens(reply.Text, req.Model)
	cost := d.costs.EstimateCost(inputTokens, outputTokens, req.Model)

	span.SetTokens(inputTokens, outputTokens)
	span.SetCost(cost.TotalCost)
	if reply.Failed() {
		logging.LogProviderFailure(ctx, d.logger, selection.ProviderName, reply.Err)
		span.EndWithError(reply.Err)
	} else {
		span.End()
	}
	logging.LogDispatchComplete(ctx, d.logger, selection.ProviderName, req.Model, inputTokens, outputTokens, cost.TotalCost, time.Since(start))

	return &chat.DispatchResult{
		ReplyText:    reply.Text,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		Cost:         cost,
		Model:        req.Model,
		Provider:     selection.ProviderName,
		Failed:       reply.Failed(),
	}
}

func (d *Dispatcher) callAdapter(ctx context.Context, adapter ports.ChatAdapter, req ports.GenerateRequest) ports.Reply {
	ctx = logging.WithProvider(ctx, adapter.Name())
	ctx, span := d.tracer.StartProviderSpan(ctx, adapter.Name(), req.Model)
	span.SetMessageCount(len(req.Messages))

	reply := adapter.Generate(ctx, req)

	if reply.Failed() {
		span.SetResponse(statusOf(reply.Err), len(reply.Text))
		span.EndWithError(reply.Err)
	} else {
		span.SetResponse(200, len(reply.Text))
		span.End()
	}
	return reply
}

// runSearch returns the formatted search block. A failed search still
// yields text: the single error record the search port produces.
func (d *Dispatcher) runSearch(ctx context.Context, query string) string {
	ctx, span := d.tracer.StartSearchSpan(ctx, "web", d.searchLimit)
	results := d.search.Search(ctx, query, d.searchLimit)
	span.SetResultCount(len(results))
	span.End()

	return d.search.FormatResults(query, results)
}

// statusOf extracts the HTTP status recorded on a provider error, or 0.
func statusOf(err error) int {
	var pe *errors.PlaygroundError
	if errors.As(err, &pe) {
		if status, ok := pe.Context["status"].(int); ok {
			return status
		}
	}
	return 0
}
