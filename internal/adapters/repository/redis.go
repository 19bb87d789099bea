package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/pkg/logger"
)

const (
	// KeyPrefix namespaces dashboard snapshots.
	KeyPrefix = "chapterboard:dashboard:"

	defaultConnectTimeout = 10 * time.Second
	defaultIOTimeout      = 3 * time.Second
)

// redisClient is the subset of the go-redis client the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisStore keeps dashboard snapshots in redis as JSON with a TTL.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
	logger logger.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore parses url, connects and verifies the server responds.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	opts.DialTimeout = defaultConnectTimeout
	opts.ReadTimeout = defaultIOTimeout
	opts.WriteTimeout = defaultIOTimeout

	s := newRedisStore(redis.NewClient(opts), ttl)

	ctx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()
	if err := s.client.Ping(ctx).Err(); err != nil {
		_ = s.client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	s.logger.Info(ctx, "redis connected", logger.Duration("ttl", ttl))
	return s, nil
}

func newRedisStore(c redisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: c,
		ttl:    ttl,
		logger: logger.Get().Named("redis"),
	}
}

// Get implements Store.Get.
func (s *RedisStore) Get(ctx context.Context, key string) (model.Dashboard, error) {
	if s.client == nil {
		return model.Dashboard{}, ErrRedisNotConnected
	}
	if key == "" {
		return model.Dashboard{}, ErrInvalidKey
	}

	raw, err := s.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Dashboard{}, ErrCacheMiss
	}
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("get failed: %w", err)
	}

	var d model.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		s.logger.Warn(ctx, "discarding undecodable dashboard", logger.String("key", key), logger.Error(err))
		return model.Dashboard{}, ErrCacheMiss
	}
	return d, nil
}

// Put implements Store.Put.
func (s *RedisStore) Put(ctx context.Context, key string, d model.Dashboard) error {
	if s.client == nil {
		return ErrRedisNotConnected
	}
	if key == "" {
		return ErrInvalidKey
	}

	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := s.client.Set(ctx, KeyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
