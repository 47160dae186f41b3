// Package validator decides whether a memoized result is still valid at a later
// depot version by walking its nested dependency set against a delta source.
package validator

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/delta/internal/engine/future"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Pending is a match that may still be computing.
type Pending = future.Cell[domain.MatchKey, domain.MatchResult]

// Stats counts how validator requests were answered.
type Stats struct {
	// StoreHits were answered from the durable store.
	StoreHits int64
	// Computed started a new walk.
	Computed int64
	// Joined attached to a walk that was already in flight.
	Joined int64
	// Rejected failed their preconditions without a walk.
	Rejected int64
}

// Validator computes match results and deduplicates concurrent requests.
type Validator struct {
	source  ports.DeltaSource
	store   ports.MatchStore
	logger  ports.Logger
	tracer  ports.Tracer
	metrics ports.MatchMetrics

	inflight *future.Registry[domain.MatchKey, domain.MatchResult]

	storeHits atomic.Int64
	computed  atomic.Int64
	joined    atomic.Int64
	rejected  atomic.Int64
}

// New creates a Validator reading changes from source and publishing results to store.
func New(
	source ports.DeltaSource,
	store ports.MatchStore,
	logger ports.Logger,
	tracer ports.Tracer,
	metrics ports.MatchMetrics,
) *Validator {
	v := &Validator{
		source:  source,
		store:   store,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
	v.inflight = future.NewRegistry(v.publish)
	return v
}

// Match returns the match result of set at version, blocking until it is known.
func (v *Validator) Match(
	ctx context.Context,
	set *domain.NestedDependencies,
	version domain.Version,
) (domain.MatchResult, error) {
	return v.MatchAsync(ctx, set, version).Await(ctx)
}

// MatchAsync returns a pending match for set at version. The result comes from
// the durable store when present. Otherwise concurrent requests for the same set
// and version share one walk.
//
// Precondition failures resolve the returned cell immediately:
// ErrDanglingReference for a nil set, ErrVersionBeforeBaseline when version is
// older than the set, and ErrBeyondHorizon when the delta source cannot answer
// for version yet.
func (v *Validator) MatchAsync(
	ctx context.Context,
	set *domain.NestedDependencies,
	version domain.Version,
) *Pending {
	if set == nil {
		v.rejected.Add(1)
		return future.Failed[domain.MatchKey, domain.MatchResult](
			domain.MatchKey{Version: version},
			zerr.Wrap(domain.ErrDanglingReference, "dependency set is nil"),
		)
	}

	key := domain.KeyFor(set, v.source.History(), version)
	if err := v.checkPreconditions(set, version); err != nil {
		v.rejected.Add(1)
		return future.Failed[domain.MatchKey, domain.MatchResult](key, err)
	}

	if result, ok := v.lookup(key); ok {
		v.storeHits.Add(1)
		v.metrics.CacheHit(ctx)
		return future.Resolved(key, result)
	}

	cell, created := v.inflight.GetOrCreate(ctx, key, func(ctx context.Context) (domain.MatchResult, error) {
		return v.compute(ctx, set, key)
	})
	if created {
		v.computed.Add(1)
		v.metrics.CacheMiss(ctx)
	} else {
		v.joined.Add(1)
		v.metrics.Joined(ctx)
	}
	return cell
}

func (v *Validator) checkPreconditions(set *domain.NestedDependencies, version domain.Version) error {
	if version < set.Baseline() {
		return zerr.With(
			zerr.With(zerr.Wrap(domain.ErrVersionBeforeBaseline, "refusing to match"),
				"version", version.String()),
			"baseline", set.Baseline().String(),
		)
	}
	if horizon := v.source.Horizon(); version > horizon {
		return zerr.With(
			zerr.With(zerr.Wrap(domain.ErrBeyondHorizon, "refusing to match"),
				"version", version.String()),
			"horizon", horizon.String(),
		)
	}
	return nil
}

// lookup reads the durable store. Read failures are logged and treated as a miss.
func (v *Validator) lookup(key domain.MatchKey) (domain.MatchResult, bool) {
	result, ok, err := v.store.Get(key)
	if err != nil {
		v.logger.Error(zerr.With(zerr.Wrap(err, "match store lookup failed"), "key", key.String()))
		return nil, false
	}
	return result, ok
}

// publish records a resolved match in the durable store. Failures are not stored,
// so a later request recomputes them.
func (v *Validator) publish(key domain.MatchKey, result domain.MatchResult, err error) {
	if err != nil {
		return
	}
	if perr := v.store.Put(key, result); perr != nil {
		v.logger.Error(zerr.With(zerr.Wrap(perr, "failed to publish match result"), "key", key.String()))
	}
}

func (v *Validator) compute(
	ctx context.Context,
	set *domain.NestedDependencies,
	key domain.MatchKey,
) (result domain.MatchResult, err error) {
	ctx, span := v.tracer.Start(ctx, "validator.match")
	defer func() {
		if err != nil {
			span.RecordError(err)
		} else {
			span.SetAttribute("result", result.String())
		}
		v.metrics.Resolved(ctx, result, err)
		span.End()
	}()
	span.SetAttribute("fingerprint", strconv.FormatUint(key.Fingerprint, 16))
	span.SetAttribute("version", key.Version.String())

	// Another process may have published while this key was being registered.
	if stored, ok := v.lookup(key); ok {
		span.SetAttribute("store_hit", true)
		return stored, nil
	}

	var earliest [len(domain.Domains)]domain.EarliestChange
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range domain.Domains {
		g.Go(func() error {
			w := newWalk(v.source, d, key.Version)
			found, err := w.run(gctx, set)
			if err != nil {
				return err
			}
			earliest[i] = found
			span.SetAttribute(d.String()+"_visited", w.visited())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return domain.CombineMatches(earliest[0], earliest[1]), nil
}

// Stats returns a snapshot of request counters.
func (v *Validator) Stats() Stats {
	return Stats{
		StoreHits: v.storeHits.Load(),
		Computed:  v.computed.Load(),
		Joined:    v.joined.Load(),
		Rejected:  v.rejected.Load(),
	}
}

// InFlight returns the number of matches currently computing.
func (v *Validator) InFlight() int {
	return v.inflight.InFlight()
}
