package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/guard/internal/app"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <lockfile>",
		Short: "Analyze the dependencies of an existing lockfile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			return c.app.Check(cmd.Context(), args[0], app.CheckOptions{Format: format})
		},
	}
	cmd.Flags().StringP("format", "f", "", "Lockfile format: npm, yarn or pnpm (default: inferred from the file name)")
	return cmd
}
