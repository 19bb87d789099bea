package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/chapterboard/internal/domain/model"
)

const (
	defaultCapacity        = 64
	defaultJanitorInterval = time.Minute
)

type entry struct {
	dashboard model.Dashboard
	expiresAt time.Time
}

// MemoryStore is a bounded in-process Store with optional expiry.
type MemoryStore struct {
	mu              sync.Mutex
	entries         map[string]entry
	order           []string // insertion order, oldest first
	capacity        int
	ttl             time.Duration
	janitorInterval time.Duration
	now             func() time.Time

	wg       sync.WaitGroup
	stopChan chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a memory store and starts its janitor, which
// runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		entries:         make(map[string]entry),
		capacity:        defaultCapacity,
		janitorInterval: defaultJanitorInterval,
		now:             time.Now,
		stopChan:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.ttl > 0 {
		s.startJanitor(ctx)
	}
	return s
}

func (s *MemoryStore) startJanitor(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.janitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.purgeExpired()
			}
		}
	}()
}

// purgeExpired drops every expired entry.
func (s *MemoryStore) purgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	kept := s.order[:0]
	for _, k := range s.order {
		if e := s.entries[k]; s.expired(e, now) {
			delete(s.entries, k)
			continue
		}
		kept = append(kept, k)
	}
	s.order = kept
}

func (s *MemoryStore) expired(e entry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, key string) (model.Dashboard, error) {
	if key == "" {
		return model.Dashboard{}, ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.expired(e, s.now()) {
		return model.Dashboard{}, ErrCacheMiss
	}
	return e.dashboard, nil
}

// Put implements Store.Put.
func (s *MemoryStore) Put(_ context.Context, key string, d model.Dashboard) error {
	if key == "" {
		return ErrInvalidKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{dashboard: d}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	if _, exists := s.entries[key]; !exists {
		s.order = append(s.order, key)
	}
	s.entries[key] = e

	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close stops the janitor.
func (s *MemoryStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}
