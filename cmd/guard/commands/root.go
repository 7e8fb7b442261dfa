// Package commands implements the CLI commands for guard.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/guard/internal/app"
	"go.trai.ch/guard/internal/build"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/engine/policy"
)

// CLI represents the command line interface for guard.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Install(ctx context.Context, managerName string, args []string) error
	Check(ctx context.Context, lockfile string, opts app.CheckOptions) error
	Policies(managerName, root string) ([]policy.StagePolicy, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "guard",
		Short:         "Install npm, yarn and pnpm packages inside a sandbox after a risk analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	for _, m := range domain.Managers() {
		rootCmd.AddCommand(c.newManagerCmd(m))
	}
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newPolicyCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
