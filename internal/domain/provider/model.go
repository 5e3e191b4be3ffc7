// Package provider contains domain types for LLM provider and model management.
package provider

import "strings"

// Provider names
const (
	ProviderGigaChat   = "gigachat"
	ProviderYandexGPT  = "yandexgpt"
	ProviderPerplexity = "perplexity"
)

// ModelInfo describes a selectable model.
type ModelInfo struct {
	Value       string `json:"value" yaml:"value"`
	Label       string `json:"label" yaml:"label"`
	Provider    string `json:"provider" yaml:"provider"`
	Description string `json:"description" yaml:"description"`
}

// Catalog is an ordered list of models offered to users.
type Catalog []ModelInfo

// DefaultCatalog returns the built-in model list.
func DefaultCatalog() Catalog {
	return Catalog{
		{Value: "GigaChat:latest", Label: "GigaChat Latest", Provider: ProviderGigaChat, Description: "Latest GigaChat release"},
		{Value: "GigaChat-Pro:latest", Label: "GigaChat Pro", Provider: ProviderGigaChat, Description: "Professional GigaChat model"},
		{Value: "yandexgpt", Label: "Yandex GPT", Provider: ProviderYandexGPT, Description: "Main YandexGPT model"},
		{Value: "yandexgpt-lite", Label: "Yandex GPT Lite", Provider: ProviderYandexGPT, Description: "Lightweight YandexGPT model"},
		{Value: "llama-3.1-sonar-small-128k-online", Label: "Sonar Small Online", Provider: ProviderPerplexity, Description: "Perplexity sonar with live web access"},
		{Value: "llama-3.1-sonar-large-128k-online", Label: "Sonar Large Online", Provider: ProviderPerplexity, Description: "Larger Perplexity sonar model"},
		{Value: "llama-3.1-sonar-huge-128k-online", Label: "Sonar Huge Online", Provider: ProviderPerplexity, Description: "Largest Perplexity sonar model"},
	}
}

// Lookup returns the model with the given value.
func (c Catalog) Lookup(value string) (ModelInfo, bool) {
	for _, m := range c {
		if m.Value == value {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// FirstFor returns the first catalog model served by provider.
func (c Catalog) FirstFor(provider string) (ModelInfo, bool) {
	for _, m := range c {
		if m.Provider == provider {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// ByProvider groups models by provider, keeping catalog order within each group.
func (c Catalog) ByProvider() map[string][]ModelInfo {
	out := make(map[string][]ModelInfo)
	for _, m := range c {
		out[m.Provider] = append(out[m.Provider], m)
	}
	return out
}

// ContainsFold reports whether s contains substr, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
