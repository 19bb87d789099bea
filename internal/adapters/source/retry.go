package source

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/pkg/logger"
)

// Retry defaults.
const (
	defaultInitialInterval = 100 * time.Millisecond
	defaultMaxElapsed      = 5 * time.Second
)

var _ loader.Source = (*Retrying)(nil)

// Retrying retries failed fetches of the wrapped source with exponential
// backoff. Cancellation and invalid requests are never retried.
type Retrying struct {
	next            loader.Source
	initialInterval time.Duration
	maxElapsed      time.Duration
	logger          logger.Logger
}

// RetryOption configures a Retrying source.
type RetryOption func(*Retrying)

// WithInitialInterval sets the first retry delay.
func WithInitialInterval(d time.Duration) RetryOption {
	return func(r *Retrying) {
		if d > 0 {
			r.initialInterval = d
		}
	}
}

// WithMaxElapsed bounds the total time spent retrying one call.
func WithMaxElapsed(d time.Duration) RetryOption {
	return func(r *Retrying) {
		if d > 0 {
			r.maxElapsed = d
		}
	}
}

// WithRetryLogger sets a custom logger.
func WithRetryLogger(l logger.Logger) RetryOption {
	return func(r *Retrying) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRetrying wraps next.
func NewRetrying(next loader.Source, opts ...RetryOption) *Retrying {
	r := &Retrying{
		next:            next,
		initialInterval: defaultInitialInterval,
		maxElapsed:      defaultMaxElapsed,
		logger:          logger.Get().Named("source-retry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchMembers retries the wrapped FetchMembers.
func (r *Retrying) FetchMembers(ctx context.Context, page, pageSize int) (model.Page[model.Member], error) {
	return retry(ctx, r, "members", func() (model.Page[model.Member], error) {
		return r.next.FetchMembers(ctx, page, pageSize)
	})
}

// FetchEvents retries the wrapped FetchEvents.
func (r *Retrying) FetchEvents(ctx context.Context, page, pageSize int, dr model.DateRange) (model.Page[model.Event], error) {
	return retry(ctx, r, "events", func() (model.Page[model.Event], error) {
		return r.next.FetchEvents(ctx, page, pageSize, dr)
	})
}

// FetchAttendance retries the wrapped FetchAttendance.
func (r *Retrying) FetchAttendance(ctx context.Context, eventIDs []string) ([]model.AttendanceRecord, error) {
	return retry(ctx, r, "attendance", func() ([]model.AttendanceRecord, error) {
		return r.next.FetchAttendance(ctx, eventIDs)
	})
}

func (r *Retrying) policy(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialInterval
	bo.MaxElapsedTime = r.maxElapsed
	return backoff.WithContext(bo, ctx)
}

func retry[T any](ctx context.Context, r *Retrying, kind string, fn func() (T, error)) (T, error) {
	attempt := 0
	op := func() (T, error) {
		attempt++
		v, err := fn()
		if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrInvalidPage)) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn(ctx, "fetch failed, retrying",
			logger.String("kind", kind),
			logger.Int("attempt", attempt),
			logger.Duration("wait", wait),
			logger.Error(err),
		)
	}
	return backoff.RetryNotifyWithData(op, r.policy(ctx), notify)
}
