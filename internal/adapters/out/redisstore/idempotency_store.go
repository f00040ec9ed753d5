// internal/adapters/out/redisstore/idempotency_store.go
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront/internal/application/usecase"
)

// pendingMarker is held by a key while its checkout runs.
const pendingMarker = "__pending__"

// releaseScript deletes a key only while it is still pending, so a late
// Release never drops a completed key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyStore maps checkout keys to order ids.
type IdempotencyStore struct {
	rdb *redis.Client
}

var _ usecase.IdempotencyStore = (*IdempotencyStore)(nil)

func NewIdempotencyStore(rdb *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb}
}

func (s *IdempotencyStore) key(k string) string { return fmt.Sprintf(KeyIdemCheckout, k) }

func (s *IdempotencyStore) Reserve(ctx context.Context, key string) (string, bool, error) {
	k := s.key(key)
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.rdb.SetNX(ctx, k, pendingMarker, TTLPending).Result()
		if err != nil {
			return "", false, fmt.Errorf("redis: reserve %s: %w", key, err)
		}
		if ok {
			return "", true, nil
		}
		v, err := s.rdb.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			// expired between SETNX and GET
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("redis: read %s: %w", key, err)
		}
		if v == pendingMarker {
			return "", false, nil
		}
		return v, false, nil
	}
	return "", false, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, orderID string) error {
	if err := s.rdb.Set(ctx, s.key(key), orderID, TTLIdempotency).Err(); err != nil {
		return fmt.Errorf("redis: complete %s: %w", key, err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, s.rdb, []string{s.key(key)}, pendingMarker).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis: release %s: %w", key, err)
	}
	return nil
}
