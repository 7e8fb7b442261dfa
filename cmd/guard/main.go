// Package main is the entry point for guard.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"github.com/zhangyunhao116/agentbox"
	"go.trai.ch/guard/cmd/guard/commands"
	"go.trai.ch/guard/internal/app"
	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/engine/pipeline"
	_ "go.trai.ch/guard/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	// The sandbox re-executes this binary as its helper process on Linux.
	if agentbox.MaybeSandboxInit() {
		return
	}

	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() { _ = c.Close(context.WithoutCancel(ctx)) }, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		// Write directly to stderr passed in
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return domain.ExitGeneric.Int()
	}
	defer cleanup()

	// Apply options
	for _, opt := range opts {
		opt(components.App)
	}

	// 2. Interface - CLI
	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		var exitErr *pipeline.ExitError
		if errors.As(err, &exitErr) {
			// Already reported by the app layer.
			return exitErr.Code().Int()
		}
		components.Logger.Error(err)
		return domain.ExitUsage.Int()
	}
	return domain.ExitOK.Int()
}
