package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jbctechsolutions/playground/internal/presentation/cli/output"
)

// VersionInfo holds version information for JSON output.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")

	return cmd
}

// runVersion runs without the app context, so it builds its own formatter.
func runVersion(short bool) error {
	format, err := output.ParseFormat(globalFlags.Output)
	if err != nil {
		return err
	}
	f := output.NewFormatter(output.WithFormat(format), output.WithColor(format != output.FormatJSON))

	info := VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	switch {
	case format == output.FormatJSON && short:
		return f.JSON(map[string]string{"version": info.Version})
	case format == output.FormatJSON:
		return f.JSON(info)
	case short:
		return f.Println("%s", info.Version)
	}

	f.Header("Playground " + info.Version)
	f.Item("Git Commit", info.GitCommit)
	f.Item("Build Date", info.BuildDate)
	f.Item("Go Version", info.GoVersion)
	f.Item("Platform", info.Platform)
	return nil
}
