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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/okian/mailboard/internal/adapters/http/api"
	"github.com/okian/mailboard/internal/adapters/http/site"
	"github.com/okian/mailboard/internal/adapters/http/swagger"
	"github.com/okian/mailboard/internal/adapters/session"
	app "github.com/okian/mailboard/internal/app"
	"github.com/okian/mailboard/internal/config"
	"github.com/okian/mailboard/internal/domain/aggregate"
	"github.com/okian/mailboard/internal/domain/insight"
	"github.com/okian/mailboard/pkg/logger"
	"github.com/okian/mailboard/pkg/metrics"
)

// HTTP server timeout constants. Uploads may be large, so body reads and
// writes get minutes rather than seconds.
const (
	readTimeout               = 5 * time.Minute
	writeTimeout              = 5 * time.Minute
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	redisPingTimeout          = 5 * time.Second
	serviceMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.InitWith(os.Stdout, logger.Format(cfg.LogFormat)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	sessions, closeSessions, err := newSessionStore(ctx, cfg)
	if err != nil {
		loggerInstance.Error(ctx, "failed to open session store", logger.String("session_store", cfg.SessionStore), logger.Error(err))
		return
	}
	defer closeSessions()

	svc := app.New(serviceOptions(cfg, loggerInstance, sessions)...)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// Start service metrics updater
	go startServiceMetricsUpdater(ctx, svc)

	r := chi.NewRouter()

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc,
		api.WithAllowedOrigins(cfg.AllowedOrigins),
		api.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)
	apiServer.Register(ctx, r)

	// Register the API reference under /api-docs
	swagger.Register(ctx, r)

	// Send browsers landing on / to the dashboard
	site.Register(ctx, r)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// serviceOptions maps configuration onto service options.
func serviceOptions(cfg *config.Config, log logger.Logger, sessions session.Store) []app.Option {
	return []app.Option{
		app.WithLogger(log),
		app.WithMaxUploadBytes(cfg.MaxUploadBytes),
		app.WithChunkSize(cfg.ChunkSize),
		app.WithCacheEntries(cfg.CacheEntries),
		app.WithUploadDir(cfg.UploadDir),
		app.WithDefaultTopN(aggregate.TopN(cfg.DefaultTopN)),
		app.WithSessionStore(sessions),
		app.WithInsightOptions(
			insight.WithHorizon(cfg.ForecastHorizon),
			insight.WithMinRows(cfg.ClassifierMinRows),
			insight.WithMinPoints(cfg.ForecastMinPoints),
		),
	}
}

// newSessionStore opens the configured display-session backend.
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	if cfg.SessionStore != "redis" {
		return session.NewMemoryStore(ttl), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	store := session.NewRedisStore(client, ttl)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	logger.Get().Info(ctx, "using redis session store", logger.String("addr", cfg.RedisAddr))
	return store, func() { _ = client.Close() }, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metrics.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startServiceMetricsUpdater starts a background goroutine that updates service metrics.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateServiceMetrics(svc)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)

	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}

// updateServiceMetrics refreshes gauges derived from service stats.
func updateServiceMetrics(svc *app.Service) {
	stats := svc.GetStats()

	if n, ok := stats["cachedDatasets"].(int); ok {
		metrics.UpdateCachedDatasets(n)
	}

	if n, ok := stats["sessions"].(int); ok {
		metrics.UpdateActiveSessions(n)
	}
}
