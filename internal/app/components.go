package app

import (
	"context"
	"errors"

	"go.trai.ch/guard/internal/core/ports"
)

// Components contains all the initialized application components.
// This struct provides controlled access to components needed by the CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger

	closers []func(context.Context) error
}

// Close releases resources held by the components, such as the tracer provider.
func (c *Components) Close(ctx context.Context) error {
	if c == nil {
		return nil
	}

	var errs []error
	for _, closeFn := range c.closers {
		errs = append(errs, closeFn(ctx))
	}
	return errors.Join(errs...)
}

// shutdowner is implemented by components that own background resources.
type shutdowner interface {
	Shutdown(ctx context.Context) error
}
