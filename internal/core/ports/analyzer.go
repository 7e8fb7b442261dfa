package ports

import (
	"context"

	"go.trai.ch/guard/internal/core/domain"
)

// Analyzer submits dependencies to the risk-analysis service.
//
//go:generate mockgen -source=analyzer.go -destination=mocks/mock_analyzer.go -package=mocks
type Analyzer interface {
	// Analyze returns the policy evaluation for the requested dependencies.
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.PolicyEvaluationResult, error)
}
