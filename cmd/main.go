package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/chapterboard/internal/adapters/http/api"
	"github.com/okian/chapterboard/internal/adapters/http/site"
	"github.com/okian/chapterboard/internal/adapters/http/swagger"
	"github.com/okian/chapterboard/internal/adapters/repository"
	"github.com/okian/chapterboard/internal/adapters/scheduler"
	"github.com/okian/chapterboard/internal/adapters/source"
	app "github.com/okian/chapterboard/internal/app"
	"github.com/okian/chapterboard/internal/app/loader"
	"github.com/okian/chapterboard/internal/config"
	"github.com/okian/chapterboard/internal/domain/model"
	"github.com/okian/chapterboard/internal/synth"
	"github.com/okian/chapterboard/pkg/logger"
	"github.com/okian/chapterboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 60 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (.env -> defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "service failed", logger.Error(err))
		os.Exit(1)
	}
}

// application holds the wired components of the service.
type application struct {
	service   *app.Service
	scheduler *scheduler.Scheduler
	handler   http.Handler
	closers   []func()
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// build wires source, cache, coordinator, service, scheduler and routes.
func build(ctx context.Context, cfg *config.Config) (*application, error) {
	log := logger.Get()
	a := &application{}

	src, closeSource, err := source.Open(ctx, source.Settings{
		DSN:             cfg.DatabaseURL,
		Schema:          cfg.DatabaseSchema,
		RetryMaxElapsed: cfg.RetryMaxElapsed(),
		Synth: synth.Config{
			Members: cfg.SynthMembers,
			Events:  cfg.SynthEvents,
			Days:    cfg.DateRangeDays,
			Seed:    cfg.SynthSeed,
		},
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeSource)

	store, err := repository.Open(ctx, cfg.RedisURL, cfg.CacheTTL())
	if err != nil {
		// The cache is best-effort; fall back to the in-process store.
		log.Warn(ctx, "dashboard cache unavailable; using memory", logger.Error(err))
		store = repository.NewMemoryStore(ctx, repository.WithTTL(cfg.CacheTTL()))
	}

	coord := loader.New(src,
		loader.WithMemberPageSize(cfg.MemberPageSize),
		loader.WithEventPageSize(cfg.EventPageSize),
		loader.WithDateRange(model.LastDays(time.Now(), cfg.DateRangeDays)),
		loader.WithLogger(log.Named("loader")),
	)

	svc := app.New(coord,
		app.WithStore(store),
		app.WithLeaderboardLimit(cfg.LeaderboardLimit),
		app.WithMaxLeaderboardLimit(cfg.MaxLeaderboardLimit),
		app.WithLogger(log.Named("service")),
	)
	a.service = svc
	a.closers = append(a.closers, func() {
		if err := svc.Close(); err != nil {
			log.Warn(ctx, "closing dashboard cache", logger.Error(err))
		}
	})

	a.scheduler = scheduler.New(svc,
		scheduler.WithInterval(cfg.RefreshPeriod()),
		scheduler.WithImmediate(),
		scheduler.WithLogger(log.Named("scheduler")),
	)

	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, a.scheduler).Register(ctx, mux)
	a.handler = mux

	return a, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	a, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	// The first refresh runs on the scheduler so the server starts at once.
	go a.scheduler.Run(ctx)
	go startSystemMetricsUpdater(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           a.handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := a.scheduler.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "scheduler shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

// startSystemMetricsUpdater publishes the goroutine count until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
