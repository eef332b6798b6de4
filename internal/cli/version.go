package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "labeldb %s\n", app.build.Version)
			fmt.Fprintf(w, "  Build time: %s\n", app.build.BuildTime)
			fmt.Fprintf(w, "  Git commit: %s\n", app.build.GitCommit)
			return nil
		},
	}
}
