package service

import (
	"time"

	"github.com/okian/chapterboard/internal/adapters/repository"
	"github.com/okian/chapterboard/pkg/logger"
)

// Default view settings.
const (
	DefaultLeaderboardLimit    = 10
	DefaultMaxLeaderboardLimit = 100
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the dashboard cache.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLeaderboardLimit sets the default leaderboard size.
func WithLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.leaderboardLimit = n
		}
	}
}

// WithMaxLeaderboardLimit caps the leaderboard size a caller may request.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLeaderboardLimit = n
		}
	}
}

// WithClock overrides the time source used for generated timestamps and
// graduation-year insights.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
