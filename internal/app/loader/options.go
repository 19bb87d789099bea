package loader

import (
	"time"

	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/pkg/logger"
)

// Default pagination and filter settings.
const (
	DefaultMemberPageSize = 50
	DefaultEventPageSize  = 25
	DefaultDateRangeDays  = 365
)

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithMemberPageSize sets the member page size.
func WithMemberPageSize(size int) Option {
	return func(c *Coordinator) {
		if size > 0 {
			c.memberPageSize = size
		}
	}
}

// WithEventPageSize sets the event page size.
func WithEventPageSize(size int) Option {
	return func(c *Coordinator) {
		if size > 0 {
			c.eventPageSize = size
		}
	}
}

// WithDateRange sets the initial event date filter.
func WithDateRange(r model.DateRange) Option {
	return func(c *Coordinator) {
		c.dateRange = r
	}
}

// WithSelectedMetric sets the initially selected dashboard view.
func WithSelectedMetric(m model.Metric) Option {
	return func(c *Coordinator) {
		if m != "" {
			c.metric = m
		}
	}
}

// WithClock overrides the time source used for the default date range.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets a custom logger for the coordinator.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}
