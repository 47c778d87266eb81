package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ownershipKeyPrefix = "owns:"
	idempotencyKeyTTL  = 24 * time.Hour
)

// RedisAdapter caches ownership snapshots for display reads. Mutations are
// never served from here; staleness is bounded by the snapshot TTL and by
// invalidation after trades.
type RedisAdapter struct {
	client      *redis.Client
	snapshotTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, snapshotTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, snapshotTTL: snapshotTTL}
}

func ownershipKey(customerID int64) string {
	return ownershipKeyPrefix + strconv.FormatInt(customerID, 10)
}

func (r *RedisAdapter) GetOwnership(ctx context.Context, customerID int64) (map[int64]int, bool, error) {
	raw, err := r.client.Get(ctx, ownershipKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var quantities map[int64]int
	if err := json.Unmarshal(raw, &quantities); err != nil {
		return nil, false, err
	}
	return quantities, true, nil
}

func (r *RedisAdapter) SetOwnership(ctx context.Context, customerID int64, quantities map[int64]int) error {
	raw, err := json.Marshal(quantities)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, ownershipKey(customerID), raw, r.snapshotTTL).Err()
}

func (r *RedisAdapter) InvalidateOwnership(ctx context.Context, customerID int64) error {
	return r.client.Del(ctx, ownershipKey(customerID)).Err()
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}
