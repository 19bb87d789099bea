package source

import (
	"context"
	"time"

	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/synth"
	"github.com/okian/chapterboard/pkg/logger"
)

// Settings selects and configures a source.
type Settings struct {
	// DSN selects Postgres; empty serves a synthetic chapter from memory.
	DSN             string
	Schema          string
	RetryMaxElapsed time.Duration
	Synth           synth.Config
}

// Open returns the configured source wrapped in retries, and a func that
// releases it.
func Open(ctx context.Context, s Settings) (loader.Source, func(), error) {
	log := logger.Get().Named("source")

	if s.DSN == "" {
		ch := synth.Generate(ctx, s.Synth)
		log.Info(ctx, "serving synthetic chapter from memory",
			logger.Int("members", len(ch.Members)),
			logger.Int("events", len(ch.Events)),
		)
		return NewMemory(ch.Members, ch.Events, ch.Attendance), func() {}, nil
	}

	pg, err := Connect(ctx, s.DSN, WithSchema(s.Schema))
	if err != nil {
		return nil, nil, err
	}
	return NewRetrying(pg, WithMaxElapsed(s.RetryMaxElapsed)), pg.Close, nil
}
