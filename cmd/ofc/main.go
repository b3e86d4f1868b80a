// Command ofc scrapes BBMP optical-fibre-cable permit data and derives
// per-operator insights from it. The four stages run in order by default;
// -stages reruns a subset over the intermediate files of a previous run.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wireman27/bengaluru-ofc-data/internal/adapter/bbmp"
	"github.com/wireman27/bengaluru-ofc-data/internal/adapter/rawstore"
	"github.com/wireman27/bengaluru-ofc-data/internal/collector"
	"github.com/wireman27/bengaluru-ofc-data/internal/config"
	"github.com/wireman27/bengaluru-ofc-data/internal/insight"
	"github.com/wireman27/bengaluru-ofc-data/internal/observability"
	"github.com/wireman27/bengaluru-ofc-data/internal/pipeline"
)

func main() {
	stagesFlag := flag.String("stages", "all", "comma-separated stages to run: wards,fetch,collect,clean")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	stages, err := pipeline.ParseStages(*stagesFlag)
	if err != nil {
		logger.Error("invalid -stages flag", "error", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	client := bbmp.NewClient(cfg.BaseURL, bbmp.Headers{
		UserAgent: cfg.UserAgent,
		Origin:    cfg.Origin,
		Referer:   cfg.Referer,
	}, cfg.HTTPTimeout, logger)

	store := rawstore.New(cfg.RawDataDir, cfg.FetchLogPath, clockwork.NewRealClock())

	p := pipeline.New(
		pipeline.NewEnumerator(client, cfg.ZoneFirst, cfg.ZoneLast, logger, metrics),
		pipeline.NewFetcher(client, store, logger, metrics),
		collector.New(store, logger, metrics),
		insight.NewCleaner(cfg, logger, metrics),
		cfg.WardsCSVPath,
		cfg.CollectionPath,
		logger,
		metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := p.Run(ctx, stages); err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

// serveMetrics exposes the Prometheus registry while the batch runs. Scrapes
// after the process exits obviously get nothing; the endpoint exists for
// long unattended fetch runs.
func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
	}
	logger.Info("metrics listener starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Warn("metrics listener stopped", "error", err)
	}
}
