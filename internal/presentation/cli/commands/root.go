// Package commands implements the CLI commands for the playground.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/playground/internal/application"
	"github.com/jbctechsolutions/playground/internal/infrastructure/config"
	"github.com/jbctechsolutions/playground/internal/presentation/cli/output"
)

// Version information - set at build time via ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GlobalFlags holds the global CLI flags.
type GlobalFlags struct {
	ConfigFile string
	EnvFile    string
	Output     string
	Verbose    bool
}

// AppContext holds the application runtime context.
type AppContext struct {
	Config     *config.Config
	Formatter  *output.Formatter
	Flags      *GlobalFlags
	Container  *application.Container
	ctx        context.Context
	cancelFunc context.CancelFunc
}

var (
	globalFlags GlobalFlags
	appCtx      *AppContext
	appCtxMu    sync.RWMutex // Protects appCtx for thread-safe access
)

// NewRootCmd creates the root command for the playground CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "playground",
		Short: "Playground - chat with GigaChat, YandexGPT and Perplexity",
		Long: `Playground is a chat playground for several LLM providers.

It routes each model to its provider, folds attached file previews and
optional web search results into the prompt, and records token usage and
estimated cost for every message.

Key features:
  • GigaChat, YandexGPT and Perplexity behind one API
  • Per-message token counts and cost estimates
  • Persistent sessions and agent presets
  • JSON HTTP API and an interactive terminal chat`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for commands that need no container
			if cmd.Name() == "help" || cmd.Name() == "version" || cmd.Name() == "completion" || cmd.Name() == "init" {
				return nil
			}
			return initializeApp()
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigFile, "config", "c", "", "config file path (default: ~/.playground/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&globalFlags.EnvFile, "env-file", ".env", "dotenv file with provider credentials")
	rootCmd.PersistentFlags().StringVarP(&globalFlags.Output, "output", "o", "text", "output format: text, table, json")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewAskCmd())
	rootCmd.AddCommand(NewChatCmd())
	rootCmd.AddCommand(NewStatsCmd())
	rootCmd.AddCommand(NewModelsCmd())

	return rootCmd
}

// initializeApp initializes the application context.
func initializeApp() error {
	format, err := output.ParseFormat(globalFlags.Output)
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(
		output.WithFormat(format),
		output.WithColor(format != output.FormatJSON),
	)

	cfg, err := loadConfig(globalFlags.ConfigFile, globalFlags.EnvFile)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	container, err := application.NewContainer(cfg, globalFlags.Verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	appCtxMu.Lock()
	appCtx = &AppContext{
		Config:     cfg,
		Formatter:  formatter,
		Flags:      &globalFlags,
		Container:  container,
		ctx:        ctx,
		cancelFunc: cancel,
	}
	appCtxMu.Unlock()

	return nil
}

// loadConfig loads configuration from the specified file or default location,
// then applies the dotenv file and the environment.
func loadConfig(configPath, envFile string) (*config.Config, error) {
	loader, err := config.NewLoader("")
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}

	return loader.WithEnvFile(envFile).Load(configPath)
}

// GetFormatter returns the output formatter.
// Creates a default formatter if app context is not initialized.
func GetFormatter() *output.Formatter {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()

	if ctx != nil {
		return ctx.Formatter
	}
	return output.NewFormatter()
}

// GetContainer returns the application container.
// Returns nil if the app hasn't been initialized.
func GetContainer() *application.Container {
	appCtxMu.RLock()
	ctx := appCtx
	appCtxMu.RUnlock()

	if ctx != nil {
		return ctx.Container
	}
	return nil
}

// appContext returns the cancellable context shared by commands.
func appContext() context.Context {
	appCtxMu.RLock()
	defer appCtxMu.RUnlock()

	if appCtx != nil && appCtx.ctx != nil {
		return appCtx.ctx
	}
	return context.Background()
}

// requireContainer returns the container or an error when initialization
// was skipped.
func requireContainer() (*application.Container, error) {
	container := GetContainer()
	if container == nil {
		return nil, fmt.Errorf("application container not initialized")
	}
	return container, nil
}

// Shutdown performs graceful shutdown of the application.
// Cancels the context and releases the container.
func Shutdown() {
	appCtxMu.Lock()
	defer appCtxMu.Unlock()

	if appCtx == nil {
		return
	}
	if appCtx.cancelFunc != nil {
		appCtx.cancelFunc()
	}
	if appCtx.Container != nil {
		_ = appCtx.Container.Close()
	}
	appCtx = nil
}

// Execute runs the root command with graceful shutdown support.
func Execute() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		rootCmd := NewRootCmd()
		errChan <- rootCmd.Execute()
	}()

	select {
	case err := <-errChan:
		if err != nil {
			formatter := GetFormatter()
			formatter.Error("%s", err.Error())
			Shutdown()
			os.Exit(1)
		}
	case sig := <-sigChan:
		formatter := GetFormatter()
		formatter.Warning("Received signal %v, shutting down...", sig)

		// Let a running server drain before exiting.
		appCtxMu.RLock()
		if appCtx != nil && appCtx.cancelFunc != nil {
			appCtx.cancelFunc()
		}
		appCtxMu.RUnlock()
		if err := <-errChan; err != nil {
			formatter.Error("%s", err.Error())
		}
		Shutdown()
		os.Exit(130) // Standard exit code for SIGINT
	}

	Shutdown()
}
