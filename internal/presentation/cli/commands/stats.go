package commands

import (
	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/playground/internal/presentation/cli/output"
)

// statsFlags holds the flags for the stats command.
type statsFlags struct {
	SessionID string
}

var statsOpts statsFlags

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show token usage and estimated cost",
		Long: `Display usage totals across all sessions, broken down by model.

With --session, display the totals of a single session instead.

Examples:
  playground stats
  playground stats --session 3f2c...
  playground stats -o json`,
		Args: cobra.NoArgs,
		RunE: runStats,
	}

	cmd.Flags().StringVarP(&statsOpts.SessionID, "session", "s", "", "show totals for one session")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	container, err := requireContainer()
	if err != nil {
		return err
	}

	ctx := appContext()
	formatter := GetFormatter()
	service := container.ChatService()

	if statsOpts.SessionID != "" {
		totals, err := service.SessionStats(ctx, statsOpts.SessionID)
		if err != nil {
			return err
		}
		if formatter.Format() == output.FormatJSON {
			return formatter.JSON(totals)
		}
		output.NewUsageRenderer(formatter).RenderTotals(totals)
		return nil
	}

	stats, err := service.GlobalStats(ctx)
	if err != nil {
		return err
	}
	if formatter.Format() == output.FormatJSON {
		return formatter.JSON(stats)
	}

	output.NewUsageRenderer(formatter).RenderStats(stats)
	return nil
}
