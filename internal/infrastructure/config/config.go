// Package config provides configuration structs and utilities for the playground server.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jbctechsolutions/playground/internal/domain/provider"
)

// Config represents the root configuration for the playground.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Providers ProviderConfigs `yaml:"providers"`
	Search    SearchConfig    `yaml:"search"`
	Routing   RoutingConfig   `yaml:"routing"`
	Tokens    TokensConfig    `yaml:"tokens"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Logging   LoggingConfig   `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ProviderConfigs holds configuration for all supported chat providers.
type ProviderConfigs struct {
	GigaChat   GigaChatConfig   `yaml:"gigachat"`
	YandexGPT  YandexGPTConfig  `yaml:"yandexgpt"`
	Perplexity PerplexityConfig `yaml:"perplexity"`
}

// GigaChatConfig holds GigaChat credentials and endpoints.
type GigaChatConfig struct {
	// AuthKey is the base64 client credentials sent as Basic auth to the OAuth endpoint.
	AuthKey            string        `yaml:"auth_key"`
	Scope              string        `yaml:"scope"`
	OAuthURL           string        `yaml:"oauth_url"`
	BaseURL            string        `yaml:"base_url"`
	Timeout            time.Duration `yaml:"timeout"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

// YandexGPTConfig holds YandexGPT credentials.
type YandexGPTConfig struct {
	APIKey   string        `yaml:"api_key"`
	FolderID string        `yaml:"folder_id"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// PerplexityConfig holds Perplexity credentials.
type PerplexityConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SearchConfig holds web search settings.
type SearchConfig struct {
	BaseURL    string        `yaml:"base_url"`
	MaxResults int           `yaml:"max_results"`
	Timeout    time.Duration `yaml:"timeout"`
}

// RoutingRule sends models whose id contains Match to Provider.
type RoutingRule struct {
	Match    string `yaml:"match"`
	Provider string `yaml:"provider"`
}

// RoutingConfig holds the ordered model routing rules.
type RoutingConfig struct {
	DefaultProvider string        `yaml:"default_provider"`
	Rules           []RoutingRule `yaml:"rules"`
}

// AliasConfig maps models onto a tiktoken model name.
type AliasConfig struct {
	Match string `yaml:"match"`
	Model string `yaml:"model"`
}

// TokensConfig holds token counting settings.
type TokensConfig struct {
	HeuristicBrands         []string      `yaml:"heuristic_brands"`
	Aliases                 []AliasConfig `yaml:"aliases"`
	PerMessageOverhead      int           `yaml:"per_message_overhead"`
	PerConversationOverhead int           `yaml:"per_conversation_overhead"`
}

// RateConfig is a per-1K token price pair in USD.
type RateConfig struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// PricingConfig overrides the built-in price table.
type PricingConfig struct {
	// DefaultModel names the row used for unknown models.
	DefaultModel string                `yaml:"default_model"`
	Overrides    map[string]RateConfig `yaml:"overrides"`
}

// LoggingConfig holds configuration for application logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// TracingConfig holds configuration for distributed tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`       // Whether tracing is enabled
	ExporterType string  `yaml:"exporter_type"` // none, stdout, otlp
	OTLPEndpoint string  `yaml:"otlp_endpoint"` // OTLP collector endpoint
	SampleRate   float64 `yaml:"sample_rate"`   // Sampling rate (0.0 to 1.0)
	ServiceName  string  `yaml:"service_name"`  // Service name for traces
}

// Default configuration values.
const (
	DefaultAddr            = "127.0.0.1:8000"
	DefaultDatabasePath    = "~/.playground/playground.db"
	DefaultTimeout         = 30 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultDefaultProvider = provider.ProviderPerplexity

	DefaultGigaChatScope    = "GIGACHAT_API_PERS"
	DefaultGigaChatOAuthURL = "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"
	DefaultGigaChatBaseURL  = "https://gigachat.devices.sberbank.ru/api/v1"
	DefaultYandexGPTBaseURL = "https://llm.api.cloud.yandex.net/foundationModels/v1"
	DefaultPerplexityURL    = "https://api.perplexity.ai"
	DefaultSearchURL        = "https://api.duckduckgo.com/"
	DefaultSearchMaxResults = 5

	DefaultPerMessageOverhead      = 4
	DefaultPerConversationOverhead = 2

	DefaultTracingExporterType = "none"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingServiceName  = "playground"
)

// Valid log levels.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Valid log formats.
var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

// Valid tracing exporter types.
var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// knownProviders are the provider names a routing rule may target.
var knownProviders = map[string]bool{
	provider.ProviderGigaChat:   true,
	provider.ProviderYandexGPT:  true,
	provider.ProviderPerplexity: true,
}

// DefaultRoutingRules returns the built-in model routing rules.
func DefaultRoutingRules() []RoutingRule {
	return []RoutingRule{
		{Match: "sonar", Provider: provider.ProviderPerplexity},
		{Match: "gigachat", Provider: provider.ProviderGigaChat},
		{Match: "yandex", Provider: provider.ProviderYandexGPT},
	}
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         DefaultAddr,
			ReadTimeout:  DefaultTimeout,
			WriteTimeout: 2 * DefaultTimeout,
		},
		Database: DatabaseConfig{
			Path: DefaultDatabasePath,
		},
		Providers: ProviderConfigs{
			GigaChat: GigaChatConfig{
				Scope:    DefaultGigaChatScope,
				OAuthURL: DefaultGigaChatOAuthURL,
				BaseURL:  DefaultGigaChatBaseURL,
				Timeout:  DefaultTimeout,
			},
			YandexGPT: YandexGPTConfig{
				BaseURL: DefaultYandexGPTBaseURL,
				Timeout: DefaultTimeout,
			},
			Perplexity: PerplexityConfig{
				BaseURL: DefaultPerplexityURL,
				Timeout: DefaultTimeout,
			},
		},
		Search: SearchConfig{
			BaseURL:    DefaultSearchURL,
			MaxResults: DefaultSearchMaxResults,
			Timeout:    DefaultTimeout,
		},
		Routing: RoutingConfig{
			DefaultProvider: DefaultDefaultProvider,
			Rules:           DefaultRoutingRules(),
		},
		Tokens: TokensConfig{
			HeuristicBrands:         []string{"gigachat", "yandex"},
			Aliases:                 []AliasConfig{{Match: "sonar", Model: "gpt-4"}},
			PerMessageOverhead:      DefaultPerMessageOverhead,
			PerConversationOverhead: DefaultPerConversationOverhead,
		},
		Pricing: PricingConfig{
			DefaultModel: provider.DefaultRateModel,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			ExporterType: DefaultTracingExporterType,
			SampleRate:   DefaultTracingSampleRate,
			ServiceName:  DefaultTracingServiceName,
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server: addr is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database: path is required"))
	}
	if err := c.Providers.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("providers: %w", err))
	}
	if err := c.Search.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("search: %w", err))
	}
	if err := c.Routing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("routing: %w", err))
	}
	if err := c.Tokens.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tokens: %w", err))
	}
	if err := c.Pricing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pricing: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks endpoint URLs and timeouts. Missing credentials are not
// an error here: an adapter without credentials answers with a
// configuration error reply instead.
func (p *ProviderConfigs) Validate() error {
	var errs []error

	check := func(name, field, raw string, timeout time.Duration) {
		if err := validateURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %s: %w", name, field, err))
		}
		if timeout < 0 {
			errs = append(errs, fmt.Errorf("%s: timeout must be non-negative", name))
		}
	}

	check(provider.ProviderGigaChat, "oauth_url", p.GigaChat.OAuthURL, p.GigaChat.Timeout)
	check(provider.ProviderGigaChat, "base_url", p.GigaChat.BaseURL, 0)
	check(provider.ProviderYandexGPT, "base_url", p.YandexGPT.BaseURL, p.YandexGPT.Timeout)
	check(provider.ProviderPerplexity, "base_url", p.Perplexity.BaseURL, p.Perplexity.Timeout)

	if p.GigaChat.Scope == "" {
		errs = append(errs, errors.New("gigachat: scope is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the SearchConfig is valid.
func (s *SearchConfig) Validate() error {
	var errs []error

	if err := validateURL(s.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	}
	if s.MaxResults <= 0 {
		errs = append(errs, errors.New("max_results must be positive"))
	}
	if s.Timeout < 0 {
		errs = append(errs, errors.New("timeout must be non-negative"))
	}

	return errors.Join(errs...)
}

// Validate checks if the RoutingConfig is valid.
func (r *RoutingConfig) Validate() error {
	var errs []error

	if r.DefaultProvider == "" {
		errs = append(errs, errors.New("default_provider is required"))
	} else if !knownProviders[r.DefaultProvider] {
		errs = append(errs, fmt.Errorf("unknown default_provider %q", r.DefaultProvider))
	}

	for i, rule := range r.Rules {
		if rule.Match == "" {
			errs = append(errs, fmt.Errorf("rules[%d]: match is required", i))
		}
		if !knownProviders[rule.Provider] {
			errs = append(errs, fmt.Errorf("rules[%d]: unknown provider %q", i, rule.Provider))
		}
	}

	return errors.Join(errs...)
}

// Validate checks if the TokensConfig is valid.
func (t *TokensConfig) Validate() error {
	var errs []error

	if t.PerMessageOverhead < 0 {
		errs = append(errs, errors.New("per_message_overhead must be non-negative"))
	}
	if t.PerConversationOverhead < 0 {
		errs = append(errs, errors.New("per_conversation_overhead must be non-negative"))
	}
	for i, a := range t.Aliases {
		if a.Match == "" || a.Model == "" {
			errs = append(errs, fmt.Errorf("aliases[%d]: match and model are required", i))
		}
	}

	return errors.Join(errs...)
}

// Validate checks if the PricingConfig is valid.
func (p *PricingConfig) Validate() error {
	var errs []error

	for model, rate := range p.Overrides {
		if rate.Input < 0 || rate.Output < 0 {
			errs = append(errs, fmt.Errorf("overrides[%s]: rates must be non-negative", model))
		}
	}

	return errors.Join(errs...)
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	return errors.Join(errs...)
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
		errs = append(errs, fmt.Errorf("invalid exporter_type %q: must be one of none, stdout, otlp", t.ExporterType))
	}
	if t.SampleRate < 0 || t.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate))
	}
	if t.Enabled && t.ExporterType == "otlp" && t.OTLPEndpoint == "" {
		errs = append(errs, errors.New("otlp_endpoint is required when exporter_type is otlp"))
	}

	return errors.Join(errs...)
}

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url must use http or https scheme")
	}
	return nil
}
