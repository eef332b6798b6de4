package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/labeldb/internal/stats"
)

func statsCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the annotation database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := stats.Summarize(cmd.Context(), st)
			if err != nil {
				return err
			}
			return stats.Write(cmd.OutOrStdout(), sum, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", stats.FormatText, "Output format: text, json, yaml")
	return cmd
}
