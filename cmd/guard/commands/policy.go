package commands

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *CLI) newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy <npm|yarn|pnpm>",
		Short: "Print the sandbox policy of every install stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")

			policies, err := c.app.Policies(args[0], root)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(policies); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().String("root", "", "Project root (default: found from the working directory)")
	return cmd
}
