// Command report loads the chapter once and writes the dashboard as an XLSX
// workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/chapterboard/internal/adapters/export"
	"github.com/okian/chapterboard/internal/adapters/source"
	app "github.com/okian/chapterboard/internal/app"
	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/config"
	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/internal/synth"
	"github.com/okian/chapterboard/pkg/logger"
)

// Default flag values.
const (
	defaultPageSize = 10_000
	defaultTimeout  = 5 * time.Minute
)

type options struct {
	out      string
	days     int
	pageSize int
	metric   string
	timeout  time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.out, "out", "", "Output file (default: chapterboard-YYYYMMDD.xlsx)")
	flag.IntVar(&opts.days, "days", 0, "Event window in days ending now (default: date_range_days from config)")
	flag.IntVar(&opts.pageSize, "page-size", defaultPageSize, "Rows per page; large enough to load every record in one page")
	flag.StringVar(&opts.metric, "metric", string(model.MetricHealth), "Selected metric recorded in the report")
	flag.DurationVar(&opts.timeout, "timeout", defaultTimeout, "Overall timeout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	_ = logger.SetLevelString(cfg.LogLevel)

	path, err := report(ctx, cfg, opts, time.Now())
	if err != nil {
		logger.Get().Error(ctx, "report failed", logger.Error(err))
		os.Exit(1)
	}
	logger.Get().Info(ctx, "report written", logger.String("path", path))
}

// report loads every record and writes the workbook, returning its path.
func report(ctx context.Context, cfg *config.Config, opts options, now time.Time) (string, error) {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	days := cfg.DateRangeDays
	if opts.days > 0 {
		days = opts.days
	}
	pageSize := opts.pageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	metric, err := model.ParseMetric(opts.metric)
	if err != nil {
		return "", err
	}

	src, closeSource, err := source.Open(ctx, source.Settings{
		DSN:             cfg.DatabaseURL,
		Schema:          cfg.DatabaseSchema,
		RetryMaxElapsed: cfg.RetryMaxElapsed(),
		Synth: synth.Config{
			Members: cfg.SynthMembers,
			Events:  cfg.SynthEvents,
			Days:    days,
			Seed:    cfg.SynthSeed,
			Now:     now,
		},
	})
	if err != nil {
		return "", err
	}
	defer closeSource()

	coord := loader.New(src,
		loader.WithMemberPageSize(pageSize),
		loader.WithEventPageSize(pageSize),
		loader.WithDateRange(model.LastDays(now, days)),
		loader.WithSelectedMetric(metric),
	)
	svc := app.New(coord,
		app.WithClock(func() time.Time { return now }),
		app.WithLeaderboardLimit(cfg.MaxLeaderboardLimit),
		app.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
	)
	defer func() { _ = svc.Close() }()

	if err := svc.Refresh(ctx, app.TriggerManual); err != nil {
		return "", err
	}
	st := svc.State()
	if st.MemberCursor.HasMore || st.EventCursor.HasMore {
		logger.Get().Warn(ctx, "records exceed one page; the report is partial",
			logger.Int("page_size", pageSize))
	}

	path := opts.out
	if path == "" {
		path = fmt.Sprintf("chapterboard-%s.xlsx", now.Format("20060102"))
	}
	if err := export.WriteFile(path, svc.Dashboard(ctx)); err != nil {
		return "", err
	}
	return path, nil
}
