package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		check  func(t *testing.T, buf *bytes.Buffer)
	}{
		{
			name: "text format",
			config: Config{
				Level:  LevelInfo,
				Format: FormatText,
			},
			check: func(t *testing.T, buf *bytes.Buffer) {
				if !strings.Contains(buf.String(), "level=INFO") {
					t.Error("expected text format with level=INFO")
				}
			},
		},
		{
			name: "json format",
			config: Config{
				Level:  LevelInfo,
				Format: FormatJSON,
			},
			check: func(t *testing.T, buf *bytes.Buffer) {
				var m map[string]interface{}
				if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
					t.Errorf("expected valid JSON output: %v", err)
				}
				if m["level"] != "INFO" {
					t.Errorf("expected level INFO, got %v", m["level"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.config.Output = buf

			logger := New(tt.config)
			logger.Info("test message")

			tt.check(t, buf)
		})
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     Level
		logMethod func(l *Logger)
		expected  bool
	}{
		{
			name:      "debug at debug level",
			level:     LevelDebug,
			logMethod: func(l *Logger) { l.Debug("test") },
			expected:  true,
		},
		{
			name:      "debug at info level",
			level:     LevelInfo,
			logMethod: func(l *Logger) { l.Debug("test") },
			expected:  false,
		},
		{
			name:      "info at info level",
			level:     LevelInfo,
			logMethod: func(l *Logger) { l.Info("test") },
			expected:  true,
		},
		{
			name:      "warn at error level",
			level:     LevelError,
			logMethod: func(l *Logger) { l.Warn("test") },
			expected:  false,
		},
		{
			name:      "error at error level",
			level:     LevelError,
			logMethod: func(l *Logger) { l.Error("test") },
			expected:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(Config{
				Level:  tt.level,
				Format: FormatText,
				Output: buf,
			})

			tt.logMethod(logger)

			hasOutput := buf.Len() > 0
			if hasOutput != tt.expected {
				t.Errorf("expected output=%v, got output=%v", tt.expected, hasOutput)
			}
		})
	}
}

func TestContextEnrichment(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: buf,
	})

	ctx := context.Background()
	ctx = WithCorrelationID(ctx, "corr-123")
	ctx = WithSessionID(ctx, "sess-456")
	ctx = WithProvider(ctx, "gigachat")
	ctx = WithModel(ctx, "GigaChat:latest")

	logger.InfoContext(ctx, "enriched log")

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	expected := map[string]string{
		"correlation_id": "corr-123",
		"session_id":     "sess-456",
		"provider":       "gigachat",
		"model":          "GigaChat:latest",
	}

	for key, expectedVal := range expected {
		if m[key] != expectedVal {
			t.Errorf("expected %s=%s, got %v", key, expectedVal, m[key])
		}
	}
}

func TestWith(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: buf,
	})

	childLogger := logger.With("component", "dispatcher")
	childLogger.Info("with attributes")

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	if m["component"] != "dispatcher" {
		t.Errorf("expected component=dispatcher, got %v", m["component"])
	}
}

func TestWithGroup(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  LevelInfo,
		Format: FormatJSON,
		Output: buf,
	})

	childLogger := logger.WithGroup("metrics")
	childLogger.Info("grouped log", "count", 42)

	var m map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	// The group should contain the "count" attribute
	metrics, ok := m["metrics"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected metrics group, got %v", m["metrics"])
	}

	if metrics["count"] != float64(42) {
		t.Errorf("expected count=42, got %v", metrics["count"])
	}
}

func TestCorrelationIDExtraction(t *testing.T) {
	ctx := context.Background()

	// No correlation ID
	if id := CorrelationID(ctx); id != "" {
		t.Errorf("expected empty correlation ID, got %s", id)
	}

	// With correlation ID
	ctx = WithCorrelationID(ctx, "test-id")
	if id := CorrelationID(ctx); id != "test-id" {
		t.Errorf("expected correlation ID 'test-id', got %s", id)
	}
}

func TestDomainLogHelpers(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{
		Level:  LevelDebug,
		Format: FormatJSON,
		Output: buf,
	})

	ctx := context.Background()

	decode := func(t *testing.T) map[string]interface{} {
		t.Helper()
		var m map[string]interface{}
		if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}
		return m
	}

	t.Run("LogDispatchStart", func(t *testing.T) {
		buf.Reset()
		LogDispatchStart(ctx, logger, "yandexgpt", "yandexgpt-lite", 42, true)

		m := decode(t)
		if m["msg"] != "dispatch started" {
			t.Errorf("unexpected message: %v", m["msg"])
		}
		if m["web_search"] != true {
			t.Errorf("unexpected web_search: %v", m["web_search"])
		}
	})

	t.Run("LogDispatchComplete", func(t *testing.T) {
		buf.Reset()
		LogDispatchComplete(ctx, logger, "gigachat", "GigaChat:latest", 500, 200, 0.00007, 2*time.Second)

		m := decode(t)
		if m["duration_ms"] != float64(2000) {
			t.Errorf("unexpected duration_ms: %v", m["duration_ms"])
		}
		if m["output_tokens"] != float64(200) {
			t.Errorf("unexpected output_tokens: %v", m["output_tokens"])
		}
		if m["cost_usd"] != 0.00007 {
			t.Errorf("unexpected cost_usd: %v", m["cost_usd"])
		}
	})

	t.Run("LogProviderFailure", func(t *testing.T) {
		buf.Reset()
		LogProviderFailure(ctx, logger, "gigachat", errors.New("HTTP 401"))

		m := decode(t)
		if m["level"] != "WARN" {
			t.Errorf("unexpected level: %v", m["level"])
		}
		if m["error"] != "HTTP 401" {
			t.Errorf("unexpected error: %v", m["error"])
		}
	})

	t.Run("LogTotalsRecomputed", func(t *testing.T) {
		buf.Reset()
		LogTotalsRecomputed(ctx, logger, "s1", 300, "0.000123")

		m := decode(t)
		if m["total_cost"] != "0.000123" {
			t.Errorf("unexpected total_cost: %v", m["total_cost"])
		}
	})

	t.Run("LogHTTPRequest", func(t *testing.T) {
		buf.Reset()
		LogHTTPRequest(ctx, logger, "GET", "/api/stats", 200, 15*time.Millisecond)

		m := decode(t)
		if m["path"] != "/api/stats" || m["status"] != float64(200) {
			t.Errorf("unexpected request fields: %v", m)
		}
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("dropped")
}

func TestDefaultLogger(t *testing.T) {
	// Reset global for test
	global = nil
	globalOnce = sync.Once{}

	logger := Default()
	if logger == nil {
		t.Error("expected non-nil default logger")
	}

	// Calling Default() again should return the same instance
	logger2 := Default()
	if logger != logger2 {
		t.Error("expected same logger instance from Default()")
	}
}
