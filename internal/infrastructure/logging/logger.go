// Package logging provides structured logging infrastructure for the playground server.
// It wraps Go's standard log/slog package with context-aware logging, correlation IDs,
// and domain-specific log attributes.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// contextKey is used for storing logger-related values in context.
type contextKey string

const (
	// CorrelationIDKey is the context key for correlation IDs.
	CorrelationIDKey contextKey = "correlation_id"
	// SessionIDKey is the context key for chat session IDs.
	SessionIDKey contextKey = "session_id"
	// ProviderKey is the context key for provider names.
	ProviderKey contextKey = "provider"
	// ModelKey is the context key for model identifiers.
	ModelKey contextKey = "model"
)

// Level represents log levels.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Format represents log output formats.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config holds logging configuration.
type Config struct {
	Level      Level
	Format     Format
	Output     io.Writer
	AddSource  bool
	TimeFormat string
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     os.Stderr,
		AddSource:  false,
		TimeFormat: time.RFC3339,
	}
}

// Logger wraps slog.Logger with additional functionality for the playground.
type Logger struct {
	slogger *slog.Logger
}

// global is the package-level default logger.
var (
	global     *Logger
	globalOnce sync.Once
)

// Init initializes the global logger with the provided configuration.
func Init(cfg Config) *Logger {
	globalOnce.Do(func() {
		global = New(cfg)
	})
	return global
}

// Default returns the global logger, initializing it with defaults if necessary.
func Default() *Logger {
	if global == nil {
		Init(DefaultConfig())
	}
	return global
}

// New creates a new Logger with the provided configuration.
func New(cfg Config) *Logger {
	level := parseLevel(cfg.Level)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Customize time format
			if a.Key == slog.TimeKey && cfg.TimeFormat != "" {
				if t, ok := a.Value.Any().(time.Time); ok {
					return slog.String(slog.TimeKey, t.Format(cfg.TimeFormat))
				}
			}
			return a
		},
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return &Logger{slogger: slog.New(handler)}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return New(Config{Level: LevelError, Output: io.Discard})
}

// ParseLevel converts a config string into a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "warning":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// parseLevel converts a Level to slog.Level.
func parseLevel(l Level) slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a new Logger with the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slogger: l.slogger.With(args...),
	}
}

// WithGroup returns a new Logger with the given group name.
func (l *Logger) WithGroup(name string) *Logger {
	return &Logger{
		slogger: l.slogger.WithGroup(name),
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Error(msg, args...)
}

// DebugContext logs at debug level with context.
func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.slogger.DebugContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// InfoContext logs at info level with context.
func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.slogger.InfoContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// WarnContext logs at warn level with context.
func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.slogger.WarnContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// ErrorContext logs at error level with context.
func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.slogger.ErrorContext(ctx, msg, l.enrichArgs(ctx, args)...)
}

// enrichArgs extracts context values and adds them as log attributes.
func (l *Logger) enrichArgs(ctx context.Context, args []any) []any {
	enriched := make([]any, 0, len(args)+10)

	// Extract standard context values
	if v := ctx.Value(CorrelationIDKey); v != nil {
		enriched = append(enriched, "correlation_id", v)
	}
	if v := ctx.Value(SessionIDKey); v != nil {
		enriched = append(enriched, "session_id", v)
	}
	if v := ctx.Value(ProviderKey); v != nil {
		enriched = append(enriched, "provider", v)
	}
	if v := ctx.Value(ModelKey); v != nil {
		enriched = append(enriched, "model", v)
	}

	enriched = append(enriched, args...)
	return enriched
}

// --- Context helpers ---

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// WithSessionID adds a chat session ID to the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

// WithProvider adds a provider name to the context.
func WithProvider(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ProviderKey, name)
}

// WithModel adds a model identifier to the context.
func WithModel(ctx context.Context, model string) context.Context {
	return context.WithValue(ctx, ModelKey, model)
}

// CorrelationID extracts the correlation ID from context.
func CorrelationID(ctx context.Context) string {
	if v := ctx.Value(CorrelationIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}


// --- Domain-specific logging helpers ---

// LogDispatchStart logs the start of a routed generation call.
func LogDispatchStart(ctx context.Context, logger *Logger, provider, model string, inputTokens int, webSearch bool) {
	logger.InfoContext(ctx, "dispatch started",
		"provider", provider,
		"model", model,
		"input_tokens", inputTokens,
		"web_search", webSearch,
	)
}

// LogDispatchComplete logs the accounting of a finished generation call.
func LogDispatchComplete(ctx context.Context, logger *Logger, provider, model string, inputTokens, outputTokens int, cost float64, duration time.Duration) {
	logger.InfoContext(ctx, "dispatch completed",
		"provider", provider,
		"model", model,
		"input_tokens", inputTokens,
		"output_tokens", outputTokens,
		"cost_usd", cost,
		"duration_ms", duration.Milliseconds(),
	)
}

// LogProviderRequest logs an outgoing provider request.
func LogProviderRequest(ctx context.Context, logger *Logger, provider, url string) {
	logger.DebugContext(ctx, "provider request",
		"provider", provider,
		"url", url,
	)
}

// LogProviderResponse logs a provider response.
func LogProviderResponse(ctx context.Context, logger *Logger, provider string, status int, latency time.Duration) {
	logger.DebugContext(ctx, "provider response",
		"provider", provider,
		"status", status,
		"latency_ms", latency.Milliseconds(),
	)
}

// LogProviderFailure logs a failed provider call. The failure has already
// been rendered into the reply text.
func LogProviderFailure(ctx context.Context, logger *Logger, provider string, err error) {
	logger.WarnContext(ctx, "provider call failed",
		"provider", provider,
		"error", err.Error(),
	)
}

// LogSearchFailure logs a web search that produced no usable results.
func LogSearchFailure(ctx context.Context, logger *Logger, query string, err error) {
	logger.WarnContext(ctx, "web search failed",
		"query", query,
		"error", err.Error(),
	)
}

// LogTotalsRecomputed logs refreshed session totals.
func LogTotalsRecomputed(ctx context.Context, logger *Logger, sessionID string, totalTokens int, totalCost string) {
	logger.DebugContext(ctx, "session totals recomputed",
		"session_id", sessionID,
		"total_tokens", totalTokens,
		"total_cost", totalCost,
	)
}

// LogHTTPRequest logs a handled API request.
func LogHTTPRequest(ctx context.Context, logger *Logger, method, path string, status int, duration time.Duration) {
	logger.InfoContext(ctx, "http request",
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
	)
}
