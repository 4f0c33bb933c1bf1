package rediscache

import (
	"context"
	"strconv"
	"time"

	apporder "github.com/Zhima-Mochi/snackhouse/internal/application/order"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "order:status:"

// StatusCache mirrors order status into Redis so status polls can skip the
// store.
type StatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{rdb: rdb, ttl: ttl}
}

func key(orderID int64) string {
	return keyPrefix + strconv.FormatInt(orderID, 10)
}

func (c *StatusCache) SetStatus(ctx context.Context, orderID int64, status string) error {
	return c.rdb.Set(ctx, key(orderID), status, c.ttl).Err()
}

func (c *StatusCache) GetStatus(ctx context.Context, orderID int64) (string, error) {
	return c.rdb.Get(ctx, key(orderID)).Result()
}

var _ apporder.StatusCache = (*StatusCache)(nil)
