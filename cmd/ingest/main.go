package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/txlens/internal/config"
	"github.com/vanshika/txlens/internal/feed"
	"github.com/vanshika/txlens/internal/graph"
	"github.com/vanshika/txlens/internal/logging"
	"github.com/vanshika/txlens/internal/repository"
	"github.com/vanshika/txlens/internal/service"
)

func main() {
	var (
		source  = flag.String("source", "", "Feed to ingest: URL or path to transactions.json (defaults to FEED_SOURCE)")
		workers = flag.Int("workers", 4, "Number of concurrent workers for ingestion")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	feedCfg := cfg.Feed
	if *source != "" {
		feedCfg.Source = *source
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := feed.NewSource(feedCfg, cfg.Graph)
	if err != nil {
		logger.Error("invalid feed source", "error", err)
		os.Exit(1)
	}

	// Validate the whole dataset before touching the graph.
	fetchCtx, cancelFetch := context.WithTimeout(ctx, feedCfg.FetchTimeout)
	snapshot, err := feed.Load(fetchCtx, src)
	cancelFetch()
	if err != nil {
		logger.Error("failed to load dataset", "error", err, "source", src.String())
		os.Exit(1)
	}
	if snapshot.Len() == 0 {
		logger.Error("dataset empty", "source", src.String())
		os.Exit(1)
	}

	graphClient, err := buildGraphClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := graphClient.Close(context.Background()); err != nil {
			logger.Warn("closing graph client failed", "error", err)
		}
	}()

	ingestor := service.NewBulkIngestor(repository.New(graphClient), *workers)

	start := time.Now()
	logger.Info("ingesting records", "count", snapshot.Len(), "workers", *workers)
	if err := ingestor.IngestRecords(ctx, snapshot.Records()); err != nil {
		logger.Error("record ingestion failed", "error", err)
		os.Exit(1)
	}

	logger.Info("ingestion complete", "duration", time.Since(start).String(), "records", snapshot.Len(), "customers", snapshot.Customers())
}

func buildGraphClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (graph.Client, error) {
	if cfg.Graph.URI == "" {
		return nil, fmt.Errorf("GRAPH_URI is required for ingestion: %w", graph.ErrMissingURI)
	}
	opts := graph.Options{
		URI:            cfg.Graph.URI,
		Database:       cfg.Graph.Database,
		Username:       cfg.Graph.Username,
		Password:       cfg.Graph.Password,
		MaxConnections: cfg.Graph.MaxConnections,
	}
	client, err := graph.NewNeo4jClient(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, err
	}
	logger.Info("connected to graph", "target", opts.String())
	return client, nil
}
