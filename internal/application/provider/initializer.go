// Package provider provides adapter initialization and model routing.
package provider

import (
	"fmt"
	"sort"
	"sync"

	adapterProvider "github.com/jbctechsolutions/playground/internal/adapters/provider"
	"github.com/jbctechsolutions/playground/internal/adapters/provider/gigachat"
	"github.com/jbctechsolutions/playground/internal/adapters/provider/perplexity"
	"github.com/jbctechsolutions/playground/internal/adapters/provider/yandexgpt"
	domainProvider "github.com/jbctechsolutions/playground/internal/domain/provider"
	"github.com/jbctechsolutions/playground/internal/infrastructure/config"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
)

// ProviderStatus describes a registered provider.
type ProviderStatus struct {
	Name       string   `json:"name"`
	Configured bool     `json:"configured"`
	Endpoint   string   `json:"endpoint"`
	Models     []string `json:"models,omitempty"`
}

// Initializer builds chat adapters from configuration and registers them.
type Initializer struct {
	registry *adapterProvider.Registry
	catalog  domainProvider.Catalog
	logger   *logging.Logger
	mu       sync.RWMutex
	status   map[string]*ProviderStatus
}

// NewInitializer creates a new provider initializer.
func NewInitializer(registry *adapterProvider.Registry, catalog domainProvider.Catalog, logger *logging.Logger) *Initializer {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Initializer{
		registry: registry,
		catalog:  catalog,
		logger:   logger,
		status:   make(map[string]*ProviderStatus),
	}
}

// InitFromConfig registers every supported adapter. Adapters without
// credentials are still registered: they answer with a configuration
// error reply, which keeps routing total.
func (i *Initializer) InitFromConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	gc := cfg.Providers.GigaChat
	gigaCfg := gigachat.Config{
		AuthKey:            gc.AuthKey,
		Scope:              gc.Scope,
		OAuthURL:           gc.OAuthURL,
		BaseURL:            gc.BaseURL,
		Timeout:            gc.Timeout,
		InsecureSkipVerify: gc.InsecureSkipVerify,
	}
	if err := i.registry.Register(gigachat.NewAdapter(gigaCfg, gigachat.WithLogger(i.logger))); err != nil {
		return fmt.Errorf("gigachat: %w", err)
	}
	i.setStatus(gigachat.Name, gc.AuthKey != "", gc.BaseURL)

	yc := cfg.Providers.YandexGPT
	yandexCfg := yandexgpt.Config{
		APIKey:   yc.APIKey,
		FolderID: yc.FolderID,
		BaseURL:  yc.BaseURL,
		Timeout:  yc.Timeout,
	}
	if err := i.registry.Register(yandexgpt.NewAdapter(yandexCfg, yandexgpt.WithLogger(i.logger))); err != nil {
		return fmt.Errorf("yandexgpt: %w", err)
	}
	i.setStatus(yandexgpt.Name, yc.APIKey != "" && yc.FolderID != "", yc.BaseURL)

	pc := cfg.Providers.Perplexity
	pplxCfg := perplexity.Config{
		APIKey:  pc.APIKey,
		BaseURL: pc.BaseURL,
		Timeout: pc.Timeout,
	}
	if err := i.registry.Register(perplexity.NewAdapter(pplxCfg, perplexity.WithLogger(i.logger))); err != nil {
		return fmt.Errorf("perplexity: %w", err)
	}
	i.setStatus(perplexity.Name, pc.APIKey != "", pc.BaseURL)

	return nil
}

func (i *Initializer) setStatus(name string, configured bool, endpoint string) {
	var models []string
	for _, m := range i.catalog.ByProvider()[name] {
		models = append(models, m.Value)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.status[name] = &ProviderStatus{
		Name:       name,
		Configured: configured,
		Endpoint:   endpoint,
		Models:     models,
	}
}

// Status returns the status of a provider, or nil when it is unknown.
func (i *Initializer) Status(name string) *ProviderStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.status[name]
}

// AllStatus returns the status of every provider sorted by name.
func (i *Initializer) AllStatus() []ProviderStatus {
	i.mu.RLock()
	defer i.mu.RUnlock()

	result := make([]ProviderStatus, 0, len(i.status))
	for _, s := range i.status {
		result = append(result, *s)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].Name < result[b].Name })
	return result
}

// Registry returns the underlying adapter registry.
func (i *Initializer) Registry() *adapterProvider.Registry {
	return i.registry
}
