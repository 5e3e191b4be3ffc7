package provider

import (
	"testing"

	adapterProvider "github.com/jbctechsolutions/playground/internal/adapters/provider"
	domainProvider "github.com/jbctechsolutions/playground/internal/domain/provider"
	"github.com/jbctechsolutions/playground/internal/infrastructure/config"
)

func TestInitializer_InitFromConfig(t *testing.T) {
	registry := adapterProvider.NewRegistry()
	initializer := NewInitializer(registry, domainProvider.DefaultCatalog(), nil)

	cfg := config.NewDefaultConfig()
	cfg.Providers.YandexGPT.APIKey = "key"
	cfg.Providers.YandexGPT.FolderID = "folder"

	if err := initializer.InitFromConfig(cfg); err != nil {
		t.Fatalf("InitFromConfig() error: %v", err)
	}

	if registry.Count() != 3 {
		t.Errorf("expected 3 adapters, got %d", registry.Count())
	}
	for _, name := range []string{"gigachat", "yandexgpt", "perplexity"} {
		if registry.Get(name) == nil {
			t.Errorf("adapter %s not registered", name)
		}
	}

	yandex := initializer.Status("yandexgpt")
	if yandex == nil || !yandex.Configured {
		t.Errorf("yandexgpt should be configured: %+v", yandex)
	}
	if len(yandex.Models) != 2 {
		t.Errorf("expected 2 yandex models, got %v", yandex.Models)
	}

	giga := initializer.Status("gigachat")
	if giga == nil || giga.Configured {
		t.Errorf("gigachat has no key and should not be configured: %+v", giga)
	}
	if giga.Endpoint != config.DefaultGigaChatBaseURL {
		t.Errorf("unexpected endpoint %q", giga.Endpoint)
	}
}

func TestInitializer_AllStatusSorted(t *testing.T) {
	initializer := NewInitializer(adapterProvider.NewRegistry(), domainProvider.DefaultCatalog(), nil)
	if err := initializer.InitFromConfig(config.NewDefaultConfig()); err != nil {
		t.Fatalf("InitFromConfig() error: %v", err)
	}

	all := initializer.AllStatus()
	if len(all) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(all))
	}
	if all[0].Name != "gigachat" || all[1].Name != "perplexity" || all[2].Name != "yandexgpt" {
		t.Errorf("statuses not sorted: %v", all)
	}
}

func TestInitializer_NilConfig(t *testing.T) {
	initializer := NewInitializer(adapterProvider.NewRegistry(), nil, nil)
	if err := initializer.InitFromConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
