package app

import "context"

// AddCloser registers a resource release for tests.
func (c *Components) AddCloser(f func(context.Context) error) {
	c.closers = append(c.closers, f)
}
