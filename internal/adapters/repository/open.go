package repository

import (
	"context"
	"time"
)

// Open returns a redis store when url is set and an in-process store
// otherwise.
func Open(ctx context.Context, url string, ttl time.Duration) (Store, error) {
	if url == "" {
		return NewMemoryStore(ctx, WithTTL(ttl)), nil
	}
	return NewRedisStore(ctx, url, ttl)
}
