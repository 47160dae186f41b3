package changelog

import (
	"context"
	"strconv"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/delta/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

type answer struct {
	version domain.Version
	found   bool
}

// Coalescing collapses concurrent identical ChangedAt queries into one call to
// the wrapped source.
type Coalescing struct {
	source ports.DeltaSource
	group  singleflight.Group
}

// NewCoalescing wraps source.
func NewCoalescing(source ports.DeltaSource) *Coalescing {
	return &Coalescing{source: source}
}

// ChangedAt forwards to the wrapped source, sharing the answer among concurrent
// callers. The shared call is detached from the cancellation of whichever caller started it.
func (c *Coalescing) ChangedAt(
	ctx context.Context,
	d domain.DependencyDomain,
	key domain.InternedString,
	since domain.Version,
) (domain.Version, bool, error) {
	flight := d.String() + "\x00" + key.String() + "\x00" + strconv.FormatUint(uint64(since), 10)

	res, err, _ := c.group.Do(flight, func() (any, error) {
		v, ok, err := c.source.ChangedAt(context.WithoutCancel(ctx), d, key, since)
		if err != nil {
			return nil, err
		}
		return answer{version: v, found: ok}, nil
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return 0, false, err
	}

	a := res.(answer)
	return a.version, a.found, nil
}

// Horizon returns the wrapped source's horizon.
func (c *Coalescing) Horizon() domain.Version {
	return c.source.Horizon()
}

// History returns the wrapped source's history identity.
func (c *Coalescing) History() uint64 {
	return c.source.History()
}
