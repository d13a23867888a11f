// Package health caches dependency checkers used by the readiness endpoint.
package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Checker checks one dependency.
type Checker func(ctx context.Context) error

// Cache memoises a checker for ttl and collapses concurrent refreshes into a
// single call. Checkers run on a background context bounded by timeout so one
// cancelled caller cannot poison the shared result.
type Cache struct {
	checker Checker
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time

	group   singleflight.Group
	mu      sync.Mutex
	err     error
	checked time.Time
}

// NewCache wraps checker.
func NewCache(checker Checker, ttl, timeout time.Duration) *Cache {
	return &Cache{checker: checker, ttl: ttl, timeout: timeout, now: time.Now}
}

// Check returns the cached checker result, refreshing it when stale.
func (c *Cache) Check(ctx context.Context) error {
	c.mu.Lock()
	if !c.checked.IsZero() && c.now().Sub(c.checked) < c.ttl {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	ch := c.group.DoChan("check", func() (any, error) {
		checkCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		err := c.checker(checkCtx)
		c.mu.Lock()
		c.err = err
		c.checked = c.now()
		c.mu.Unlock()
		return nil, err
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}
