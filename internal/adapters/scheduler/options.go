package scheduler

import (
	"time"

	"github.com/okian/chapterboard/pkg/logger"
)

// Default scheduler configuration.
const (
	DefaultInterval = 5 * time.Minute
	DefaultTimeout  = time.Minute
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithInterval sets the refresh period. Zero or negative disables periodic
// refreshes.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.interval = d
	}
}

// WithTimeout bounds each refresh. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithImmediate runs one refresh as soon as Run starts.
func WithImmediate() Option {
	return func(s *Scheduler) {
		s.immediate = true
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
