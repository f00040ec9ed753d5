// internal/adapters/out/redisstore/status_cache.go
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"storefront/internal/application/usecase"
	odom "storefront/internal/domain/order"
)

type statusEntry struct {
	Status odom.Status `json:"status"`
}

// StatusCache keeps {"status":"..."} per order for TTLStatusCache.
type StatusCache struct {
	rdb *redis.Client
}

var _ usecase.StatusCache = (*StatusCache)(nil)

func NewStatusCache(rdb *redis.Client) *StatusCache {
	return &StatusCache{rdb: rdb}
}

func (c *StatusCache) Get(ctx context.Context, orderID string) (odom.Status, bool, error) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	var e statusEntry
	if err := json.Unmarshal(raw, &e); err != nil || e.Status == "" {
		// treat garbage as a miss; the repository is the source of truth
		return "", false, nil
	}
	return e.Status, true, nil
}

func (c *StatusCache) Set(ctx context.Context, orderID string, status odom.Status) error {
	b, err := json.Marshal(statusEntry{Status: status})
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderID), b, TTLStatusCache).Err()
}
