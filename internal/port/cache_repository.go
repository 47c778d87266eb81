package port

import "context"

type CacheRepository interface {
	// GetOwnership returns a cached ownership snapshot; the second result is
	// false on a miss.
	GetOwnership(ctx context.Context, customerID int64) (map[int64]int, bool, error)

	// SetOwnership caches an ownership snapshot with the adapter's TTL.
	SetOwnership(ctx context.Context, customerID int64, quantities map[int64]int) error

	// InvalidateOwnership drops the cached snapshot.
	InvalidateOwnership(ctx context.Context, customerID int64) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
