// Package app implements the application layer for delta.
package app

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/engine/validator"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	depotLoader ports.DepotLoader
	recorder    ports.ChangeRecorder
	validator   *validator.Validator
	logger      ports.Logger
	parallelism int
}

// New creates a new App instance.
func New(
	loader ports.DepotLoader,
	recorder ports.ChangeRecorder,
	v *validator.Validator,
	log ports.Logger,
) *App {
	return &App{
		depotLoader: loader,
		recorder:    recorder,
		validator:   v,
		logger:      log,
	}
}

// WithParallelism bounds how many sets are matched at once. Zero or less means one per CPU.
func (a *App) WithParallelism(n int) *App {
	a.parallelism = n
	return a
}

// Sets returns the names of every set declared by the depot manifest at manifestPath.
func (a *App) Sets(manifestPath string) ([]string, error) {
	depot, err := a.depotLoader.Load(manifestPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load depot")
	}
	return depot.SetNames(), nil
}

// CheckOptions configures the Check method.
type CheckOptions struct {
	// Version is the candidate version the sets are matched at.
	Version domain.Version
	// Sets names the sets to match. Empty means every set of the depot.
	Sets []string
}

// Report is the outcome of matching one set.
type Report struct {
	Set    string
	Result domain.MatchResult
	Err    error
}

// Check loads the depot manifest at manifestPath, feeds its changes to the delta
// source and matches the selected sets at opts.Version.
//
// Per-set failures are reported in the returned reports and summarized by an
// error wrapping domain.ErrCheckFailed. Loading failures return no reports.
func (a *App) Check(ctx context.Context, manifestPath string, opts CheckOptions) ([]Report, error) {
	// 1. Load the depot
	depot, err := a.depotLoader.Load(manifestPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load depot")
	}

	// 2. Feed the change history
	if err := a.recorder.Load(depot); err != nil {
		return nil, zerr.Wrap(err, "failed to record depot changes")
	}

	// 3. Resolve the selected sets
	names := opts.Sets
	if len(names) == 0 {
		names = depot.SetNames()
	}
	sets := make([]*domain.NestedDependencies, len(names))
	for i, name := range names {
		set, err := depot.Set(name)
		if err != nil {
			return nil, err
		}
		sets[i] = set
	}

	// 4. Match concurrently
	reports := make([]Report, len(names))
	limit := a.parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, name := range names {
		g.Go(func() error {
			result, err := a.validator.Match(gctx, sets[i], opts.Version)
			reports[i] = Report{Set: name, Result: result, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	stats := a.validator.Stats()
	a.logger.Info(fmt.Sprintf(
		"checked %d sets at version %d: %d computed, %d joined, %d from store",
		len(reports), opts.Version, stats.Computed, stats.Joined, stats.StoreHits,
	))

	var errs error
	for _, r := range reports {
		if r.Err != nil {
			errs = errors.Join(errs, zerr.With(r.Err, "set", r.Set))
		}
	}
	if errs != nil {
		return reports, errors.Join(domain.ErrCheckFailed, errs)
	}
	return reports, nil
}
