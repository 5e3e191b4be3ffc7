// Package tracing provides OpenTelemetry-based distributed tracing infrastructure.
// It supports stdout and OTLP exporters and provides span helpers for
// dispatch, provider and web search calls.
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	// TracerName is the name used for the playground tracer.
	TracerName = "github.com/jbctechsolutions/playground"

	// Version is the semantic version of the tracer.
	Version = "0.3.0"
)

// ExporterType defines the type of trace exporter.
type ExporterType string

const (
	ExporterNone   ExporterType = "none"
	ExporterStdout ExporterType = "stdout"
	ExporterOTLP   ExporterType = "otlp"
)

// Config holds tracing configuration.
type Config struct {
	Enabled      bool         // Whether tracing is enabled
	ExporterType ExporterType // Type of exporter to use
	OTLPEndpoint string       // OTLP collector endpoint (for OTLP exporter)
	ServiceName  string       // Service name for traces
	Environment  string       // Deployment environment (development, production)
	SampleRate   float64      // Sampling rate (0.0 to 1.0)
	Output       io.Writer    // Output for stdout exporter (defaults to os.Stdout)
}

// DefaultConfig returns sensible default tracing configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		ExporterType: ExporterNone,
		ServiceName:  "playground",
		Environment:  "development",
		SampleRate:   1.0,
	}
}

// Tracer wraps an OpenTelemetry tracer with domain-specific functionality.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	config   Config
}

// Default returns a tracer backed by the global OpenTelemetry provider,
// which records nothing until a provider is installed.
func Default() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(TracerName),
		config: DefaultConfig(),
	}
}

// New creates a new Tracer with the provided configuration.
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if !cfg.Enabled || cfg.ExporterType == ExporterNone {
		return &Tracer{
			tracer: noop.NewTracerProvider().Tracer(TracerName),
			config: cfg,
		}, nil
	}

	// Create exporter
	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	// Create resource without merging with Default() to avoid schema URL conflicts.
	// The default resource's schema URL may conflict with our semconv version.
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(Version),
			attribute.String("deployment.environment", cfg.Environment),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create sampler
	var sampler sdktrace.Sampler
	if cfg.SampleRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else if cfg.SampleRate <= 0.0 {
		sampler = sdktrace.NeverSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	// Create tracer provider
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	// Set global propagator
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	// Set global tracer provider
	otel.SetTracerProvider(provider)

	return &Tracer{
		tracer:   provider.Tracer(TracerName, trace.WithInstrumentationVersion(Version)),
		provider: provider,
		config:   cfg,
	}, nil
}

// createExporter creates the appropriate exporter based on configuration.
func createExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		opts := []stdouttrace.Option{
			stdouttrace.WithPrettyPrint(),
		}
		if cfg.Output != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Output))
		}
		return stdouttrace.New(opts...)

	case ExporterOTLP:
		opts := []otlptracehttp.Option{
			otlptracehttp.WithInsecure(),
		}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		return otlptracehttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
}

// Shutdown gracefully shuts down the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}

// Start starts a new span with the given name.
func (t *Tracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// --- Domain-specific span helpers ---

// DispatchSpan covers one routed generation call, from token counting to cost.
type DispatchSpan struct {
	span trace.Span
}

// StartDispatchSpan starts a span for a dispatch.
func (t *Tracer) StartDispatchSpan(ctx context.Context, model string, webSearch bool) (context.Context, *DispatchSpan) {
	ctx, span := t.tracer.Start(ctx, "dispatch.generate",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("dispatch.model", model),
			attribute.Bool("dispatch.web_search", webSearch),
		),
	)

	return ctx, &DispatchSpan{span: span}
}

// SetProvider records the provider selected by routing.
func (ds *DispatchSpan) SetProvider(provider string) {
	ds.span.SetAttributes(attribute.String("dispatch.provider", provider))
}

// SetTokens sets the token counts.
func (ds *DispatchSpan) SetTokens(input, output int) {
	ds.span.SetAttributes(
		attribute.Int("dispatch.tokens.input", input),
		attribute.Int("dispatch.tokens.output", output),
		attribute.Int("dispatch.tokens.total", input+output),
	)
}

// SetCost sets the estimated cost.
func (ds *DispatchSpan) SetCost(cost float64) {
	ds.span.SetAttributes(attribute.Float64("dispatch.cost_usd", cost))
}

// SetFileCount records how many file previews were folded into the prompt.
func (ds *DispatchSpan) SetFileCount(n int) {
	ds.span.SetAttributes(attribute.Int("dispatch.files", n))
}

// End ends the dispatch span with success status.
func (ds *DispatchSpan) End() {
	ds.span.SetStatus(codes.Ok, "dispatch completed")
	ds.span.End()
}

// EndWithError ends the dispatch span with error status.
func (ds *DispatchSpan) EndWithError(err error) {
	ds.span.RecordError(err)
	ds.span.SetStatus(codes.Error, err.Error())
	ds.span.End()
}

// SearchSpan covers one web search request.
type SearchSpan struct {
	span trace.Span
}

// StartSearchSpan starts a span for a web search.
func (t *Tracer) StartSearchSpan(ctx context.Context, engine string, limit int) (context.Context, *SearchSpan) {
	ctx, span := t.tracer.Start(ctx, "search.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("search.engine", engine),
			attribute.Int("search.limit", limit),
		),
	)

	return ctx, &SearchSpan{span: span}
}

// SetResultCount records how many results were returned.
func (ss *SearchSpan) SetResultCount(n int) {
	ss.span.SetAttributes(attribute.Int("search.results", n))
}

// End ends the search span with success status.
func (ss *SearchSpan) End() {
	ss.span.SetStatus(codes.Ok, "search completed")
	ss.span.End()
}

// EndWithError ends the search span with error status.
func (ss *SearchSpan) EndWithError(err error) {
	ss.span.RecordError(err)
	ss.span.SetStatus(codes.Error, err.Error())
	ss.span.End()
}

// ProviderSpan represents a provider request span.
type ProviderSpan struct {
	span trace.Span
}

// StartProviderSpan starts a span for provider request.
func (t *Tracer) StartProviderSpan(ctx context.Context, provider, model string) (context.Context, *ProviderSpan) {
	ctx, span := t.tracer.Start(ctx, "provider.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider.name", provider),
			attribute.String("provider.model", model),
		),
	)

	return ctx, &ProviderSpan{span: span}
}

// SetMessageCount sets the number of messages sent.
func (ps *ProviderSpan) SetMessageCount(n int) {
	ps.span.SetAttributes(attribute.Int("provider.request.messages", n))
}

// SetResponse sets the HTTP status and reply length.
func (ps *ProviderSpan) SetResponse(status, replyChars int) {
	ps.span.SetAttributes(
		attribute.Int("provider.response.status", status),
		attribute.Int("provider.response.chars", replyChars),
	)
}

// End ends the provider span with success status.
func (ps *ProviderSpan) End() {
	ps.span.SetStatus(codes.Ok, "provider request completed")
	ps.span.End()
}

// EndWithError ends the provider span with error status.
func (ps *ProviderSpan) EndWithError(err error) {
	ps.span.RecordError(err)
	ps.span.SetStatus(codes.Error, err.Error())
	ps.span.End()
}

// AddEvent adds an event to the current span.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
}
