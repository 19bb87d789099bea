package repository

import "time"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithTTL sets how long entries stay valid. Zero keeps them until evicted.
func WithTTL(ttl time.Duration) Option {
	return func(s *MemoryStore) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

// WithCapacity bounds the number of cached dashboards; the oldest entry is
// evicted first.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithJanitorInterval sets how often expired entries are purged.
func WithJanitorInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.janitorInterval = interval
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
