package validator

import (
	"context"
	"fmt"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"go.trai.ch/zerr"
)

// walk searches one domain of a dependency set for the earliest change at or
// below a candidate version. It is confined to one goroutine.
type walk struct {
	source ports.DeltaSource
	domain domain.DependencyDomain
	at     domain.Version

	best domain.EarliestChange
	seen map[*domain.NestedDependencies]struct{}
}

func newWalk(source ports.DeltaSource, d domain.DependencyDomain, at domain.Version) *walk {
	return &walk{
		source: source,
		domain: d,
		at:     at,
		seen:   make(map[*domain.NestedDependencies]struct{}),
	}
}

func (w *walk) run(ctx context.Context, root *domain.NestedDependencies) (domain.EarliestChange, error) {
	if !w.reachable(root) {
		return domain.EarliestChange{}, nil
	}
	if err := w.visit(ctx, root); err != nil {
		return domain.EarliestChange{}, err
	}
	return w.best, nil
}

// reachable reports whether set can still lower the running minimum.
func (w *walk) reachable(set *domain.NestedDependencies) bool {
	floor := set.Floor(w.domain)
	return floor.Found && floor.Version <= w.at && w.best.Lower(floor.Version)
}

// exhausted reports whether nothing under set can lower the running minimum further.
func (w *walk) exhausted(set *domain.NestedDependencies) bool {
	return w.best.Found && w.best.Version <= set.Floor(w.domain).Version
}

func (w *walk) visit(ctx context.Context, set *domain.NestedDependencies) error {
	if _, ok := w.seen[set]; ok {
		return nil
	}
	w.seen[set] = struct{}{}

	for e := range set.Entries() {
		if e.Domain != w.domain || e.MinVersion > w.at || !w.best.Lower(e.MinVersion) {
			continue
		}
		if err := w.check(ctx, e); err != nil {
			return err
		}
		if w.exhausted(set) {
			return nil
		}
	}

	for child := range set.Children() {
		if !w.reachable(child) {
			continue
		}
		if err := w.visit(ctx, child); err != nil {
			return err
		}
		if w.exhausted(set) {
			return nil
		}
	}
	return nil
}

func (w *walk) check(ctx context.Context, e domain.DependencyEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	changed, ok, err := w.source.ChangedAt(ctx, w.domain, e.Key, e.MinVersion)
	if err != nil {
		return zerr.With(
			zerr.With(fmt.Errorf("%w: %w", domain.ErrDeltaSourceFailed, err), "domain", w.domain.String()),
			"key", e.Key.String(),
		)
	}
	if !ok || changed > w.at {
		return nil
	}
	if changed < e.MinVersion {
		return zerr.With(
			zerr.With(zerr.Wrap(domain.ErrDeltaSourceFailed, "delta source reported a change below the entry floor"),
				"key", e.Key.String()),
			"changed_at", changed.String(),
		)
	}
	if w.best.Lower(changed) {
		w.best = domain.ChangeAt(changed)
	}
	return nil
}

func (w *walk) visited() int {
	return len(w.seen)
}
