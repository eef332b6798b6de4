package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/labeldb/internal/server"
)

func serveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dataset tools over MCP on stdin/stdout",
		Long: "Runs a Model Context Protocol server. Requests are read from stdin one per line\n" +
			"and responses written to stdout; logs go to stderr.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(app.settings, app.fs, app.log, server.WithVersion(app.build.Version))
			return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
