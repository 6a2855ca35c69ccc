package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"variant-tracker/adapters"
	"variant-tracker/internal/store"
	"variant-tracker/internal/types"
	"variant-tracker/pkg/config"
	"variant-tracker/tracker"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	var (
		configFlag   = flag.String("config", "", "Path to tracker.yml (optional)")
		dbFlag       = flag.String("db", "tracker.db", "Path to the sqlite order database")
		intervalFlag = flag.Duration("interval", 15*time.Minute, "Polling interval between tracking cycles")
		metricsFlag  = flag.String("metrics-addr", ":9190", "Listen address for the /metrics endpoint (empty to disable)")
		onceFlag     = flag.Bool("once", false, "Run a single tracking cycle and exit")
		httpOnly     = flag.Bool("http-only", false, "Disable the headless browser even if configured")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Setup logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	cfg := types.DefaultConfig()
	interval := *intervalFlag
	dbPath := *dbFlag
	metricsAddr := *metricsFlag

	if *configFlag != "" {
		file, err := config.Load(*configFlag)
		if err != nil {
			logger.Fatalf("Failed to load config: %v", err)
		}
		if err := file.Apply(cfg); err != nil {
			logger.Fatalf("Invalid config: %v", err)
		}
		interval, err = file.Interval(interval)
		if err != nil {
			logger.Fatalf("Invalid config: %v", err)
		}
		if file.Tracker.Database != "" {
			dbPath = file.Tracker.Database
		}
		if file.Tracker.MetricsAddr != "" {
			metricsAddr = file.Tracker.MetricsAddr
		}
	}
	if *httpOnly {
		cfg.UseHeadlessBrowser = false
	}

	orderStore, err := store.NewSQLiteStore(dbPath, logger)
	if err != nil {
		logger.Fatalf("Failed to open order store: %v", err)
	}
	defer orderStore.Close()

	registry := adapters.DefaultRegistry(cfg, logger)
	defer registry.Close()

	job := tracker.NewJob(registry, orderStore, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *onceFlag {
		report, err := job.RunOnce(ctx)
		if err != nil {
			logger.Fatalf("Tracking cycle failed: %v", err)
		}
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logger.Fatalf("Failed to marshal report: %v", err)
		}
		fmt.Println(string(jsonData))
		return
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(job.Metrics().Registry, promhttp.HandlerOpts{}))
		server := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			logger.Infof("Serving metrics on %s/metrics", metricsAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("Metrics server error: %v", err)
			}
		}()
		defer server.Close()
	}

	logger.Infof("Starting tracking loop, interval %v", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runCycle := func() {
		report, err := job.RunOnce(ctx)
		if errors.Is(err, types.ErrCycleInProgress) {
			logger.Warn("Previous cycle still running, skipping this tick")
			return
		}
		if err != nil {
			logger.Errorf("Tracking cycle failed: %v", err)
			return
		}
		if len(report.Failed) > 0 {
			logger.Warnf("Cycle finished with failures: %v", report.Failed)
		}
	}

	runCycle()
	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down")
			return
		case <-ticker.C:
			runCycle()
		}
	}
}
