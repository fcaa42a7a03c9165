package fakeapi

import (
	"slices"
	"sync"
	"time"

	"github.com/gosuda/agrotrack/internal/domain"
)

// fields exposes the bookkeeping columns every resource shares.
type fields[T any] struct {
	id      func(*T) *int64
	state   func(*T) *domain.State
	created func(*T) *string
}

// collection is an in-memory table keyed by a sequential id.
type collection[T any] struct {
	mu   sync.Mutex
	f    fields[T]
	next int64
	rows map[int64]T
	now  func() time.Time
}

func newCollection[T any](f fields[T], now func() time.Time) *collection[T] {
	return &collection[T]{f: f, next: 1, rows: make(map[int64]T), now: now}
}

// list returns matching rows ordered by id.
func (c *collection[T]) list(match func(T) bool) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int64, 0, len(c.rows))
	for id := range c.rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		row := c.rows[id]
		if match == nil || match(row) {
			out = append(out, row)
		}
	}
	return out
}

func (c *collection[T]) find(match func(T) bool) (T, bool) {
	rows := c.list(match)
	if len(rows) == 0 {
		var zero T
		return zero, false
	}
	return rows[0], true
}

func (c *collection[T]) get(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.rows[id]
	return row, ok
}

// insert assigns an id, active state and creation time.
func (c *collection[T]) insert(row T) T {
	c.mu.Lock()
	defer c.mu.Unlock()

	*c.f.id(&row) = c.next
	c.next++
	if s := c.f.state(&row); *s == "" {
		*s = domain.StateActive
	}
	if ts := c.f.created(&row); *ts == "" {
		*ts = c.now().UTC().Format(time.RFC3339)
	}
	c.rows[*c.f.id(&row)] = row
	return row
}

// update replaces an existing row, keeping its creation time.
func (c *collection[T]) update(row T) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := *c.f.id(&row)
	old, ok := c.rows[id]
	if !ok {
		return row, false
	}
	*c.f.created(&row) = *c.f.created(&old)
	if s := c.f.state(&row); *s == "" {
		*s = *c.f.state(&old)
	}
	c.rows[id] = row
	return row, true
}

func (c *collection[T]) setState(id int64, s domain.State) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.rows[id]
	if !ok {
		return row, false
	}
	*c.f.state(&row) = s
	c.rows[id] = row
	return row, true
}
