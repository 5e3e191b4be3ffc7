package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/playground/internal/infrastructure/config"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	Force bool
}

var initOpts initFlags

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write the default configuration to ~/.playground/config.yaml, or to the
path given with --config.

Provider credentials can be filled in afterwards, or supplied through the
environment (GIGACHAT_API_KEY, YANDEX_API_KEY, YANDEX_FOLDER_ID,
PERPLEXITY_API_KEY) or a .env file.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().BoolVarP(&initOpts.Force, "force", "f", false, "overwrite an existing config file")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	loader, err := config.NewLoader("")
	if err != nil {
		return err
	}

	path := globalFlags.ConfigFile
	if path == "" {
		path = loader.DefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !initOpts.Force {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	if err := loader.Save(config.NewDefaultConfig(), path); err != nil {
		return err
	}

	formatter := GetFormatter()
	formatter.Success("Wrote %s", path)
	formatter.Item("Config Dir", loader.ConfigDir())
	return nil
}
