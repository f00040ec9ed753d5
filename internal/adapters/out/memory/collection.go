// internal/adapters/out/memory/collection.go
package memory

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/domain/common"
)

// Collection is an in-process document collection with the same query
// semantics as the Firestore adapters: filters are evaluated against a
// document map, sorting falls back to document id, paging is skip/limit.
type Collection[T any] struct {
	mu    sync.RWMutex
	items map[string]T

	docOf      func(T) map[string]any
	clone      func(T) T
	storeField func(string) string
}

// NewCollection builds a collection. docOf renders the fields filters and
// sorts look at; clone (optional) deep-copies values on the way in and out;
// storeField (optional) maps a sort field to a document field.
func NewCollection[T any](docOf func(T) map[string]any, clone func(T) T, storeField func(string) string) *Collection[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	if storeField == nil {
		storeField = func(s string) string { return s }
	}
	return &Collection[T]{
		items:      map[string]T{},
		docOf:      docOf,
		clone:      clone,
		storeField: storeField,
	}
}

func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.clone(v), true
}

func (c *Collection[T]) Put(id string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = c.clone(v)
}

// Insert stores v unless id is taken.
func (c *Collection[T]) Insert(id string, v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[id]; exists {
		return false
	}
	c.items[id] = c.clone(v)
	return true
}

func (c *Collection[T]) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

// Update applies fn to the stored value (zero value and false when absent)
// under the write lock and stores the result when fn succeeds.
func (c *Collection[T]) Update(id string, fn func(cur T, exists bool) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.items[id]
	if ok {
		cur = c.clone(cur)
	}
	next, err := fn(cur, ok)
	if err != nil {
		var zero T
		return zero, err
	}
	c.items[id] = c.clone(next)
	return c.clone(next), nil
}

// Lock runs fn while holding the write lock. Nested collections used by fn
// must be different collections.
func (c *Collection[T]) Lock(fn func(items map[string]T) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(c.items)
}

func (c *Collection[T]) Count(ctx context.Context, filter common.Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	ids, _, err := c.match(filter)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Find returns one page of matching values. Populate is left to the caller.
func (c *Collection[T]) Find(ctx context.Context, filter common.Filter, req common.PageRequest) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, docs, err := c.match(filter)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(ids, func(i, j int) bool {
		a, b := docs[ids[i]], docs[ids[j]]
		for _, s := range req.Sort {
			field := c.storeField(s.Field)
			cmp := common.CompareValues(a[field], b[field])
			if cmp == 0 {
				continue
			}
			if s.Order == common.SortDesc {
				return cmp > 0
			}
			return cmp < 0
		}
		return ids[i] < ids[j]
	})

	skip := req.Skip()
	if skip < 0 || skip >= len(ids) {
		return []T{}, nil
	}
	ids = ids[skip:]
	if req.Limit > 0 && len(ids) > req.Limit {
		ids = ids[:req.Limit]
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if v, ok := c.items[id]; ok {
			out = append(out, c.clone(v))
		}
	}
	return out, nil
}

func (c *Collection[T]) match(filter common.Filter) ([]string, map[string]map[string]any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.items))
	docs := make(map[string]map[string]any, len(c.items))
	for id, v := range c.items {
		doc := c.docOf(v)
		ok, err := filter.Match(doc)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			ids = append(ids, id)
			docs[id] = doc
		}
	}
	return ids, docs, nil
}
