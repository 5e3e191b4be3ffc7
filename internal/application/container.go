// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	adapterProvider "github.com/jbctechsolutions/playground/internal/adapters/provider"
	"github.com/jbctechsolutions/playground/internal/adapters/search/duckduckgo"
	"github.com/jbctechsolutions/playground/internal/application/agent"
	"github.com/jbctechsolutions/playground/internal/application/chat"
	"github.com/jbctechsolutions/playground/internal/application/dispatch"
	appProvider "github.com/jbctechsolutions/playground/internal/application/provider"
	"github.com/jbctechsolutions/playground/internal/domain/provider"
	"github.com/jbctechsolutions/playground/internal/infrastructure/config"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
	"github.com/jbctechsolutions/playground/internal/infrastructure/storage"
	"github.com/jbctechsolutions/playground/internal/infrastructure/tokenizer"
	"github.com/jbctechsolutions/playground/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of services
// and ensures proper initialization order.
type Container struct {
	config  *config.Config
	verbose bool

	// Database connection
	dbConn *storage.Connection
	db     *sql.DB

	// Repositories
	sessionRepo *storage.SessionRepository
	agentRepo   *storage.AgentRepository
	statsRepo   *storage.StatsRepository

	// Observability
	logger *logging.Logger
	tracer *tracing.Tracer

	// Providers and dispatch
	catalog             provider.Catalog
	providerRegistry    *adapterProvider.Registry
	providerInitializer *appProvider.Initializer
	router              *appProvider.Router
	counter             *tokenizer.Counter
	costCalculator      *provider.CostCalculator
	search              *duckduckgo.Client
	dispatcher          *dispatch.Dispatcher

	// Application services
	chatService  *chat.Service
	agentService *agent.Service
}

// NewContainer creates a new dependency injection container with all services
// initialized based on the provided configuration.
func NewContainer(cfg *config.Config, verbose bool) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	c := &Container{
		config:  cfg,
		verbose: verbose,
		catalog: provider.DefaultCatalog(),
	}

	if err := c.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	if err := c.initDatabase(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c.initRepositories()

	if err := c.initProviders(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize providers: %w", err)
	}

	if err := c.initServices(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return c, nil
}

// initObservability sets up the logger and tracer from config.
func (c *Container) initObservability() error {
	level := logging.ParseLevel(c.config.Logging.Level)
	if c.verbose {
		level = logging.LevelDebug
	}

	format := logging.FormatText
	if c.config.Logging.Format == "json" {
		format = logging.FormatJSON
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = format
	logCfg.Output = os.Stderr
	c.logger = logging.New(logCfg)

	tc := c.config.Tracing
	if !tc.Enabled {
		c.tracer = tracing.Default()
		return nil
	}

	tracer, err := tracing.New(context.Background(), tracing.Config{
		Enabled:      true,
		ExporterType: tracing.ExporterType(tc.ExporterType),
		OTLPEndpoint: tc.OTLPEndpoint,
		ServiceName:  tc.ServiceName,
		Environment:  "production",
		SampleRate:   tc.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracer: %w", err)
	}
	c.tracer = tracer
	return nil
}

// initDatabase opens the SQLite database and applies migrations.
func (c *Container) initDatabase() error {
	path := c.config.Database.Path
	if path != storage.MemoryPath {
		path = config.ExpandHome(path)
	}

	conn, err := storage.NewConnection(path)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := conn.Open(); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db, err := conn.DB()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	c.dbConn = conn
	c.db = db
	return nil
}

// initRepositories initializes all storage repositories.
func (c *Container) initRepositories() {
	c.sessionRepo = storage.NewSessionRepository(c.db)
	c.agentRepo = storage.NewAgentRepository(c.db)
	c.statsRepo = storage.NewStatsRepository(c.db)
}

// initProviders registers the chat adapters and builds the router, token
// counter, price table and search client.
func (c *Container) initProviders() error {
	c.providerRegistry = adapterProvider.NewRegistry()
	c.providerInitializer = appProvider.NewInitializer(c.providerRegistry, c.catalog, c.logger)
	if err := c.providerInitializer.InitFromConfig(c.config); err != nil {
		return err
	}

	router, err := appProvider.NewRouter(c.config.Routing, c.providerRegistry)
	if err != nil {
		return fmt.Errorf("failed to create router: %w", err)
	}
	c.router = router

	c.counter = tokenizer.NewCounter(tokenizerConfig(c.config.Tokens))
	c.costCalculator = costCalculator(c.config.Pricing)

	sc := c.config.Search
	c.search = duckduckgo.NewClient(duckduckgo.Config{
		BaseURL:    sc.BaseURL,
		MaxResults: sc.MaxResults,
		Timeout:    sc.Timeout,
	}, duckduckgo.WithLogger(c.logger))

	return nil
}

// initServices initializes application services.
func (c *Container) initServices() error {
	c.dispatcher = dispatch.NewDispatcher(c.router, c.counter, c.costCalculator,
		dispatch.WithSearch(c.search, c.config.Search.MaxResults),
		dispatch.WithLogger(c.logger),
		dispatch.WithTracer(c.tracer),
	)

	defaultModel := c.DefaultModel()

	chatService, err := chat.NewService(c.sessionRepo, c.statsRepo, c.dispatcher, defaultModel, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create chat service: %w", err)
	}
	c.chatService = chatService

	agentService, err := agent.NewService(c.agentRepo, c.sessionRepo, c.statsRepo, defaultModel, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create agent service: %w", err)
	}
	c.agentService = agentService

	return nil
}

func tokenizerConfig(tc config.TokensConfig) tokenizer.Config {
	cfg := tokenizer.Config{
		HeuristicBrands:         tc.HeuristicBrands,
		PerMessageOverhead:      tc.PerMessageOverhead,
		PerConversationOverhead: tc.PerConversationOverhead,
	}
	for _, a := range tc.Aliases {
		cfg.Aliases = append(cfg.Aliases, tokenizer.Alias{Match: a.Match, Model: a.Model})
	}
	return cfg
}

// costCalculator builds the built-in price table with config overrides applied.
func costCalculator(pc config.PricingConfig) *provider.CostCalculator {
	calc := provider.NewDefaultCostCalculator()
	for model, rate := range pc.Overrides {
		calc.RegisterModel(model, rate.Input, rate.Output)
	}
	if pc.DefaultModel != "" && calc.HasModel(pc.DefaultModel) {
		rate := calc.Rate(pc.DefaultModel)
		calc.SetDefaultRate(rate.InputRate, rate.OutputRate)
	}
	return calc
}

// Close releases all resources held by the container.
func (c *Container) Close() error {
	if c.tracer != nil {
		_ = c.tracer.Shutdown(context.Background())
	}

	if c.dbConn != nil {
		return c.dbConn.Close()
	}
	return nil
}

// DefaultModel returns the model used for new sessions: the first catalog
// model of the default provider.
func (c *Container) DefaultModel() string {
	if m, ok := c.catalog.FirstFor(c.config.Routing.DefaultProvider); ok {
		return m.Value
	}
	return provider.DefaultRateModel
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// DB returns the database connection.
func (c *Container) DB() *sql.DB {
	return c.db
}

// Catalog returns the selectable models.
func (c *Container) Catalog() provider.Catalog {
	return c.catalog
}

// ProviderRegistry returns the chat adapter registry.
func (c *Container) ProviderRegistry() *adapterProvider.Registry {
	return c.providerRegistry
}

// ProviderInitializer returns the provider initializer.
func (c *Container) ProviderInitializer() *appProvider.Initializer {
	return c.providerInitializer
}

// Router returns the model router.
func (c *Container) Router() *appProvider.Router {
	return c.router
}

// CostCalculator returns the price table.
func (c *Container) CostCalculator() *provider.CostCalculator {
	return c.costCalculator
}

// Dispatcher returns the dispatch router.
func (c *Container) Dispatcher() *dispatch.Dispatcher {
	return c.dispatcher
}

// ChatService returns the chat session service.
func (c *Container) ChatService() *chat.Service {
	return c.chatService
}

// AgentService returns the agent preset service.
func (c *Container) AgentService() *agent.Service {
	return c.agentService
}

// Logger returns the application logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the application tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}
