package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func greetCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "greet",
		Short: "Print a greeting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Hello, %s!\n", name)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "World", "The name to greet")
	return cmd
}
