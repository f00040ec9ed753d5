// internal/adapters/out/memory/checkout_state_mem.go
package memory

import (
	"context"
	"sync"

	odom "storefront/internal/domain/order"
)

// IdempotencyStore keeps checkout keys in process. Keys never expire.
type IdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]string // key -> order id ("" while pending)
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{keys: map[string]string{}}
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.keys[key]; ok {
		return id, false, nil
	}
	s.keys[key] = ""
	return "", true, nil
}

func (s *IdempotencyStore) Complete(_ context.Context, key, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = orderID
	return nil
}

func (s *IdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] == "" {
		delete(s.keys, key)
	}
	return nil
}

// StatusCache is a map-backed order status cache.
type StatusCache struct {
	mu       sync.RWMutex
	statuses map[string]odom.Status
}

func NewStatusCache() *StatusCache {
	return &StatusCache{statuses: map[string]odom.Status{}}
}

func (c *StatusCache) Get(_ context.Context, orderID string) (odom.Status, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.statuses[orderID]
	return s, ok, nil
}

func (c *StatusCache) Set(_ context.Context, orderID string, status odom.Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses[orderID] = status
	return nil
}
