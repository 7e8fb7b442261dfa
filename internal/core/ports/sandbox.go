package ports

import (
	"context"

	"go.trai.ch/guard/internal/core/domain"
)

// Sandbox runs a command under a sandbox policy.
//
//go:generate mockgen -source=sandbox.go -destination=mocks/mock_sandbox.go -package=mocks
type Sandbox interface {
	// Run executes cmd confined by policy and blocks until it exits.
	//
	// A non-nil error means the sandbox could not be set up and the command
	// never ran. Otherwise the returned outcome describes the process exit.
	Run(ctx context.Context, cmd domain.Command, policy domain.SandboxPolicy) (domain.StageOutcome, error)
}
