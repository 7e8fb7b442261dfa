package ports

import "go.trai.ch/guard/internal/core/domain"

// LockfileParser extracts the resolved dependencies from a lockfile.
//
//go:generate mockgen -source=lockfile.go -destination=mocks/mock_lockfile.go -package=mocks
type LockfileParser interface {
	// Parse reads the lockfile at path in the given format.
	// A missing lockfile yields an empty set.
	Parse(path string, format domain.LockfileFormat) (domain.DependencySet, error)
}
