package app

import (
	"context"
	"errors"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
)

// Components holds the wired application and the resources it owns.
type Components struct {
	App      *App
	Logger   ports.Logger
	Settings domain.Settings

	closers []func(context.Context) error
}

// Close releases every owned resource, in reverse order of acquisition.
func (c *Components) Close(ctx context.Context) error {
	var errs error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = errors.Join(errs, c.closers[i](ctx))
	}
	c.closers = nil
	return errs
}
