package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/fetch"
	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/http/api"
	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/http/swagger"
	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/query"
	"github.com/QueCS/ogame-highscores-tracker/internal/adapters/sink"
	app "github.com/QueCS/ogame-highscores-tracker/internal/app"
	"github.com/QueCS/ogame-highscores-tracker/internal/config"
	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
	"github.com/QueCS/ogame-highscores-tracker/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to sync logger: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	policy, err := fetch.ParsePolicy(cfg.Tracker.RetryPolicy)
	if err != nil {
		// Load already validated the policy, but keep the failure readable
		// if that ever regresses.
		os.Stderr.WriteString("invalid retry policy: " + err.Error() + "\n")
		return
	}
	fetcher := fetch.NewClient(
		fetch.WithDomain(cfg.API.Domain),
		fetch.WithBaseURL(cfg.API.BaseURL),
		fetch.WithTimeout(cfg.API.Timeout()),
		fetch.WithPolicy(policy),
		fetch.WithRetryMaxElapsed(cfg.Tracker.RetryMaxElapsed()),
	)

	store := sink.NewInflux(
		sink.WithURL(cfg.InfluxDB.URL),
		sink.WithToken(cfg.InfluxDB.Token),
		sink.WithOrg(cfg.InfluxDB.Org),
		sink.WithBucket(cfg.InfluxDB.Bucket),
	)
	defer store.Close()

	// Timezones were validated by config.Load.
	serverTZ, _ := time.LoadLocation(cfg.Tracker.ServerTimezone)
	localTZ, _ := time.LoadLocation(cfg.Tracker.LocalTimezone)

	runner := query.NewInfluxRunner(cfg.InfluxDB.URL, cfg.InfluxDB.Token, cfg.InfluxDB.Org)
	defer runner.Close()

	querySvc := query.NewService(
		query.WithRunner(runner),
		query.WithBucket(cfg.InfluxDB.Bucket),
		query.WithTimezones(serverTZ, localTZ),
		query.WithDefaultDays(cfg.InfluxDB.QueryDays),
	)

	// Create and start the tracker with configuration options
	svc := app.New(
		app.WithLogger(loggerInstance),
		app.WithFetcher(fetcher),
		app.WithSink(store),
		app.WithServers(cfg.Tracker.Servers),
		app.WithCategories(cfg.Tracker.Categories),
		app.WithTypes(cfg.Tracker.Types),
		app.WithCycle(cfg.Tracker.Cycle()),
		app.WithAttributeRefresh(cfg.Tracker.AttributeRefresh),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start tracker: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register API docs under /api-docs
	swagger.Register(ctx, mux)

	// Register read API routes with the service dependencies.
	apiServer := api.NewServer(&apiDeps{svc: svc, query: querySvc}, cfg.Tracker.Types)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
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

// apiDeps bundles the tracker and the query service behind the handler
// dependency interface.
type apiDeps struct {
	svc   *app.Service
	query *query.Service
}

func (d *apiDeps) History(ctx context.Context, p query.Params) (query.Series, error) {
	return d.query.History(ctx, p)
}

func (d *apiDeps) Servers() []string { return d.svc.Servers() }

func (d *apiDeps) GetStats() map[string]interface{} { return d.svc.GetStats() }

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
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

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
