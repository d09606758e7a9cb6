// Package memory provides process-local ResourceStore implementations. Data
// does not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

// Collection is an ordered, mutex-guarded slice of records. Mutations hold the
// write lock for the whole read-modify-write cycle.
type Collection[T ports.Record] struct {
	mu    sync.RWMutex
	items []T
}

var _ ports.ResourceStore[domain.Issue] = (*Collection[domain.Issue])(nil)

func NewCollection[T ports.Record]() *Collection[T] {
	return &Collection[T]{}
}

func (c *Collection[T]) List(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]T, len(c.items))
	copy(out, c.items)
	return out, nil
}

func (c *Collection[T]) Get(_ context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexOf(id); i >= 0 {
		return c.items[i], nil
	}
	var zero T
	return zero, domain.ErrRecordNotFound
}

func (c *Collection[T]) Insert(ctx context.Context, item T) error {
	return c.InsertUnless(ctx, item, nil)
}

func (c *Collection[T]) InsertUnless(_ context.Context, item T, conflict func(existing T) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, existing := range c.items {
		if existing.RecordID() == item.RecordID() || (conflict != nil && conflict(existing)) {
			return domain.ErrRecordConflict
		}
	}
	c.items = append(c.items, item)
	return nil
}

func (c *Collection[T]) Update(ctx context.Context, id string, mutate func(*T) error) (T, error) {
	return c.UpdateUnless(ctx, id, mutate, nil)
}

func (c *Collection[T]) UpdateUnless(_ context.Context, id string, mutate func(*T) error, conflict func(existing T) bool) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	i := c.indexOf(id)
	if i < 0 {
		return zero, domain.ErrRecordNotFound
	}
	if conflict != nil {
		for j, existing := range c.items {
			if j != i && conflict(existing) {
				return zero, domain.ErrRecordConflict
			}
		}
	}
	next := c.items[i]
	if err := mutate(&next); err != nil {
		return zero, err
	}
	c.items[i] = next
	return next, nil
}

func (c *Collection[T]) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return domain.ErrRecordNotFound
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return nil
}

// indexOf must be called with mu held.
func (c *Collection[T]) indexOf(id string) int {
	for i, item := range c.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}
