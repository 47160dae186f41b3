// Package future provides identity-keyed, single-completion result cells.
//
// A Cell resolves exactly once, with either a value or an error. Any number of
// callers may wait on it or attach continuations, before or after it resolves,
// and all of them observe the same outcome. A Registry deduplicates cells by key
// so that concurrent requests for the same computation share one run.
package future

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.trai.ch/delta/internal/core/domain"
	"go.trai.ch/zerr"
)

// Cell is a one-shot result slot for the computation identified by Key.
type Cell[K comparable, V any] struct {
	key      K
	settled  atomic.Bool
	done     chan struct{}
	onSettle func(K, V, error)

	// value and err are written once before done is closed.
	value V
	err   error

	mu            sync.Mutex
	continuations []func(V, error)
}

func newCell[K comparable, V any](key K, onSettle func(K, V, error)) *Cell[K, V] {
	return &Cell[K, V]{
		key:      key,
		done:     make(chan struct{}),
		onSettle: onSettle,
	}
}

// NewCell creates a pending cell with no completion callback.
func NewCell[K comparable, V any](key K) *Cell[K, V] {
	return newCell[K, V](key, nil)
}

// Resolved returns a cell already completed with v.
func Resolved[K comparable, V any](key K, v V) *Cell[K, V] {
	c := newCell[K, V](key, nil)
	_ = c.Complete(v)
	return c
}

// Failed returns a cell already failed with err.
func Failed[K comparable, V any](key K, err error) *Cell[K, V] {
	c := newCell[K, V](key, nil)
	_ = c.Fail(err)
	return c
}

// Key returns the identity of the computation.
func (c *Cell[K, V]) Key() K {
	return c.key
}

// Complete resolves the cell with v.
// It returns ErrAlreadyCompleted if the cell was already resolved.
func (c *Cell[K, V]) Complete(v V) error {
	return c.settle(v, nil)
}

// Fail resolves the cell with err.
// It returns ErrAlreadyCompleted if the cell was already resolved.
func (c *Cell[K, V]) Fail(err error) error {
	var zero V
	return c.settle(zero, err)
}

func (c *Cell[K, V]) settle(v V, err error) error {
	if !c.settled.CompareAndSwap(false, true) {
		return zerr.With(zerr.Wrap(domain.ErrAlreadyCompleted, "cell resolved twice"), "key", fmt.Sprint(c.key))
	}

	c.value, c.err = v, err

	// The owner publishes the result and releases the key before any waiter
	// wakes, so a waiter that asks again finds the published result.
	if c.onSettle != nil {
		c.onSettle(c.key, v, err)
	}

	c.mu.Lock()
	close(c.done)
	pending := c.continuations
	c.continuations = nil
	c.mu.Unlock()

	for _, fn := range pending {
		fn(v, err)
	}
	return nil
}

// Done returns a channel that is closed once the cell resolves.
func (c *Cell[K, V]) Done() <-chan struct{} {
	return c.done
}

// IsResolved reports whether waiters can observe the outcome.
func (c *Cell[K, V]) IsResolved() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Await blocks until the cell resolves or ctx is done.
// Giving up on ctx does not affect the computation.
func (c *Cell[K, V]) Await(ctx context.Context) (V, error) {
	select {
	case <-c.done:
		return c.value, c.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// OnResolved registers fn to run with the outcome. If the cell already resolved,
// fn runs immediately on the calling goroutine; otherwise it runs on the goroutine
// that resolves the cell. fn must not block.
func (c *Cell[K, V]) OnResolved(fn func(V, error)) {
	c.mu.Lock()
	select {
	case <-c.done:
		c.mu.Unlock()
		fn(c.value, c.err)
		return
	default:
	}
	c.continuations = append(c.continuations, fn)
	c.mu.Unlock()
}
