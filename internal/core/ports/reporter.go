package ports

import "go.trai.ch/guard/internal/core/domain"

// Reporter renders a policy evaluation for the user.
//
//go:generate mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks
type Reporter interface {
	// Report writes the evaluation. It must not reorder dependencies or rejections.
	Report(result *domain.PolicyEvaluationResult)
}
