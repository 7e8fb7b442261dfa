package ports

import (
	"context"

	"go.trai.ch/guard/internal/core/domain"
)

// Executor runs a command without any sandbox.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd with the caller's standard streams and blocks until it exits.
	//
	// It returns an error only if the process could not be started.
	Execute(ctx context.Context, cmd domain.Command) (domain.StageOutcome, error)
}
