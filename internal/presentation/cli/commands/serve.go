package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/playground/internal/presentation/httpapi"
)

// serveFlags holds the flags for the serve command.
type serveFlags struct {
	Addr string
}

var serveOpts serveFlags

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON HTTP API",
		Long: `Serve the playground over HTTP.

The API exposes sessions, agents, model listings and usage statistics.
The server stops gracefully on SIGINT or SIGTERM.

Examples:
  # Listen on the configured address
  playground serve

  # Listen on all interfaces
  playground serve --addr 0.0.0.0:8000`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveOpts.Addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	container, err := requireContainer()
	if err != nil {
		return err
	}

	cfg := container.Config().Server
	addr := cfg.Addr
	if serveOpts.Addr != "" {
		addr = serveOpts.Addr
	}

	server := &httpapi.Server{
		Chat:      container.ChatService(),
		Agents:    container.AgentService(),
		Catalog:   container.Catalog(),
		Providers: container.ProviderInitializer(),
		Logger:    container.Logger(),
	}

	formatter := GetFormatter()
	formatter.Info("Listening on http://%s", addr)

	if err := server.ListenAndServe(appContext(), addr, cfg.ReadTimeout, cfg.WriteTimeout); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
