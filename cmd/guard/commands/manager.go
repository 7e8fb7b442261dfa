package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/guard/internal/core/domain"
)

func (c *CLI) newManagerCmd(m domain.PackageManager) *cobra.Command {
	return &cobra.Command{
		Use:   m.Name + " [args...]",
		Short: fmt.Sprintf("Run %s, sandboxing commands that change dependencies", m.Name),
		// Everything after the manager name belongs to the manager.
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Install(cmd.Context(), m.Name, args)
		},
	}
}
