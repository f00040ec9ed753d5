// internal/adapters/out/redisstore/client.go
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	KeyIdemCheckout = "idem:checkout:%s"
	KeyOrderStatus  = "order:status:%s"
)

const (
	TTLIdempotency = 24 * time.Hour
	TTLPending     = 5 * time.Minute
	TTLStatusCache = 10 * time.Minute
)

// New connects to addr and pings it once.
func New(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return rdb, nil
}
