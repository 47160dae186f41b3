package future

import (
	"context"
	"sync"

	"go.trai.ch/zerr"
)

// ComputeFunc produces the value for a cell.
type ComputeFunc[V any] func(ctx context.Context) (V, error)

// Registry tracks in-flight cells by key. A key is registered from the moment a
// computation is requested until its cell resolves.
type Registry[K comparable, V any] struct {
	cells    sync.Map // K -> *Cell[K, V]
	onSettle func(K, V, error)
}

// NewRegistry creates a Registry. onSettle, if not nil, runs exactly once per
// resolved cell, before the cell leaves the registry and before waiters wake.
func NewRegistry[K comparable, V any](onSettle func(K, V, error)) *Registry[K, V] {
	return &Registry[K, V]{onSettle: onSettle}
}

// GetOrCreate returns the in-flight cell for key, or registers a new one and
// starts compute for it on its own goroutine. The boolean reports whether this
// call created the cell.
//
// compute runs with a context detached from ctx's cancellation: once started it
// runs to completion so that every waiter observes the outcome.
func (r *Registry[K, V]) GetOrCreate(ctx context.Context, key K, compute ComputeFunc[V]) (*Cell[K, V], bool) {
	if existing, ok := r.cells.Load(key); ok {
		return existing.(*Cell[K, V]), false
	}

	c := newCell[K, V](key, nil)
	c.onSettle = func(k K, v V, err error) {
		if r.onSettle != nil {
			r.onSettle(k, v, err)
		}
		r.cells.CompareAndDelete(k, c)
	}

	if existing, loaded := r.cells.LoadOrStore(key, c); loaded {
		return existing.(*Cell[K, V]), false
	}

	go r.run(context.WithoutCancel(ctx), c, compute)
	return c, true
}

func (r *Registry[K, V]) run(ctx context.Context, c *Cell[K, V], compute ComputeFunc[V]) {
	v, err := invoke(ctx, compute)
	if err != nil {
		err = c.Fail(err)
	} else {
		err = c.Complete(v)
	}
	if err != nil {
		// Only run resolves a registered cell, so this is a bug in the registry.
		panic(err)
	}
}

func invoke[V any](ctx context.Context, compute ComputeFunc[V]) (v V, err error) {
	defer zerr.Defer(func(recovered error) {
		err = zerr.Wrap(recovered, "computation panicked")
	})
	return compute(ctx)
}

// Lookup returns the in-flight cell for key, if any.
func (r *Registry[K, V]) Lookup(key K) (*Cell[K, V], bool) {
	c, ok := r.cells.Load(key)
	if !ok {
		return nil, false
	}
	return c.(*Cell[K, V]), true
}

// InFlight returns the number of registered cells that have not resolved.
func (r *Registry[K, V]) InFlight() int {
	n := 0
	r.cells.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
