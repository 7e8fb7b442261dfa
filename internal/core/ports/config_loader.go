package ports

import "go.trai.ch/guard/internal/core/domain"

// ConfigLoader defines the interface for loading the guard configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load finds the configuration for the given working directory, applies
	// environment overrides and returns the result. Defaults are returned
	// when no file exists.
	Load(cwd string) (*domain.Config, error)
}
