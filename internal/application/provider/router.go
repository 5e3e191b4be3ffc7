package provider

import (
	"errors"
	"fmt"
	"strings"

	adapterProvider "github.com/jbctechsolutions/playground/internal/adapters/provider"
	"github.com/jbctechsolutions/playground/internal/application/ports"
	domainProvider "github.com/jbctechsolutions/playground/internal/domain/provider"
	"github.com/jbctechsolutions/playground/internal/infrastructure/config"
)

// Router errors
var (
	ErrNoDefaultProvider = errors.New("default provider is not set")
	ErrRegistryNil       = errors.New("adapter registry is nil")
)

// Rule sends models whose id contains Match to Provider.
type Rule struct {
	Match    string
	Provider string
}

// Selection is the result of routing a model.
type Selection struct {
	Model        string
	ProviderName string
	// Matched is false when no rule matched and the default provider was used.
	Matched bool
}

// Router maps model identifiers onto registered chat adapters. Rules are
// evaluated in order with a case-insensitive substring match and the first
// match wins. The rule list is fixed at construction.
type Router struct {
	rules           []Rule
	defaultProvider string
	registry        *adapterProvider.Registry
}

// NewRouter creates a Router from routing configuration.
func NewRouter(cfg config.RoutingConfig, registry *adapterProvider.Registry) (*Router, error) {
	if registry == nil {
		return nil, ErrRegistryNil
	}
	if cfg.DefaultProvider == "" {
		return nil, ErrNoDefaultProvider
	}

	rules := make([]Rule, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		if r.Match == "" {
			continue
		}
		rules = append(rules, Rule{Match: strings.ToLower(r.Match), Provider: r.Provider})
	}

	return &Router{
		rules:           rules,
		defaultProvider: cfg.DefaultProvider,
		registry:        registry,
	}, nil
}

// Route returns the provider name for model. It never fails: unmatched
// models go to the default provider.
func (r *Router) Route(model string) Selection {
	for _, rule := range r.rules {
		if domainProvider.ContainsFold(model, rule.Match) {
			return Selection{Model: model, ProviderName: rule.Provider, Matched: true}
		}
	}
	return Selection{Model: model, ProviderName: r.defaultProvider}
}

// Select routes model and returns the registered adapter for it.
func (r *Router) Select(model string) (ports.ChatAdapter, Selection, error) {
	selection := r.Route(model)

	adapter, err := r.registry.GetRequired(selection.ProviderName)
	if err != nil {
		return nil, selection, fmt.Errorf("route %q: %w", model, err)
	}
	return adapter, selection, nil
}

// DefaultProvider returns the provider used for unmatched models.
func (r *Router) DefaultProvider() string {
	return r.defaultProvider
}

// Rules returns a copy of the routing rules in evaluation order.
func (r *Router) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}
