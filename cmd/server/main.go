package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vanshika/txlens/internal/config"
	"github.com/vanshika/txlens/internal/feed"
	"github.com/vanshika/txlens/internal/logging"
	"github.com/vanshika/txlens/internal/server"
	"github.com/vanshika/txlens/internal/service"
	"github.com/vanshika/txlens/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snapshot, err := loadSnapshot(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to load transaction feed", "error", err)
		os.Exit(1)
	}

	deps := server.RouterDependencies{
		Health:           server.SnapshotHealth{Snapshot: snapshot},
		Snapshot:         snapshot,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: cfg.HTTP.AllowCredentials,
		RateLimit:        cfg.RateLimit,
	}

	if cfg.HTTP.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		deps.Metrics = server.NewMetrics(registry)
		deps.Metrics.StoreRecords.Set(float64(snapshot.Len()))
		deps.Metrics.StoreCustomers.Set(float64(snapshot.Customers()))
		deps.Gatherer = registry
	}

	limiter, closeLimiter := buildRateLimiter(ctx, logger, cfg)
	defer closeLimiter()
	deps.RateLimiter = limiter

	deps.API = server.NewAPIHandlers(logger,
		service.NewTransactionService(snapshot),
		service.NewRelationshipService(snapshot),
		deps.Metrics,
	)

	srv := server.New(logger, cfg.HTTP, server.NewRouter(logger, deps))
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped unexpectedly", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// loadSnapshot fetches the feed once. Any fetch or validation failure is fatal:
// the API never serves a partial snapshot.
func loadSnapshot(ctx context.Context, logger *slog.Logger, cfg config.Config) (*store.Store, error) {
	src, err := feed.NewSource(cfg.Feed, cfg.Graph)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.Feed.FetchTimeout)
	defer cancel()

	logger.Info("loading transaction feed", "source", src.String())
	snapshot, err := feed.Load(fetchCtx, src)
	if err != nil {
		return nil, err
	}
	logger.Info("transaction feed loaded", "records", snapshot.Len(), "customers", snapshot.Customers())
	return snapshot, nil
}

// buildRateLimiter prefers Redis so replicas share windows and falls back to an
// in-process counter when Redis is not configured or unreachable.
func buildRateLimiter(ctx context.Context, logger *slog.Logger, cfg config.Config) (server.WindowCounter, func()) {
	noop := func() {}
	if cfg.RateLimit.Requests <= 0 {
		logger.Info("rate limiting disabled")
		return nil, noop
	}
	if cfg.Redis.Addr == "" {
		return server.NewMemoryCounter(), noop
	}

	counter, err := server.NewRedisCounter(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("redis unavailable, using in-process rate limiter", "addr", cfg.Redis.Addr, "error", err)
		return server.NewMemoryCounter(), noop
	}
	logger.Info("rate limiting via redis", "addr", cfg.Redis.Addr)
	return counter, func() {
		if err := counter.Close(); err != nil {
			logger.Warn("closing redis client failed", "error", err)
		}
	}
}

func parseAllowedOrigins(csv string) []string {
	var origins []string
	for _, part := range strings.Split(csv, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
