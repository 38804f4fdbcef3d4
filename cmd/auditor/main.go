// Package main is the entry point for the page auditor.
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

	"github.com/joho/godotenv"

	"github.com/page-audit/auditor/internal/api"
	"github.com/page-audit/auditor/internal/audit"
	"github.com/page-audit/auditor/internal/config"
	"github.com/page-audit/auditor/internal/fetch"
	"github.com/page-audit/auditor/internal/logging"
	"github.com/page-audit/auditor/internal/report"
	"github.com/page-audit/auditor/internal/storage"
)

func main() {
	var (
		serve      = flag.Bool("serve", false, "run the HTTP API server instead of a one-shot audit")
		configPath = flag.String("config", "", "path to a JSON config file")
		format     = flag.String("format", "json", "one-shot output format: json, csv or xlsx")
		output     = flag.String("output", "", "one-shot output file (default stdout)")
		noCache    = flag.Bool("no-cache", false, "bypass the analysis cache")
	)
	flag.Parse()

	// .env is optional; env vars win over defaults either way.
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logging.Init(os.Stderr, cfg.LogLevel)
	log := slog.Default()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("received interrupt, shutting down")
		cancel()
	}()

	acquirer, err := fetch.NewAcquirer(cfg, log)
	if err != nil {
		log.Error("failed to create acquirer", "error", err)
		os.Exit(1)
	}
	if closer, ok := acquirer.(*fetch.Renderer); ok {
		defer closer.Close()
	}

	engine := audit.NewEngine(cfg, nil, nil, log)
	defer engine.Close()

	if *serve {
		if err := runServer(ctx, cfg, engine, acquirer, log); err != nil {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	url := flag.Arg(0)
	if url == "" {
		fmt.Fprintln(os.Stderr, "Usage: auditor [flags] <url>")
		fmt.Fprintln(os.Stderr, "       auditor -serve")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := runOnce(ctx, cfg, engine, acquirer, url, *format, *output, *noCache); err != nil {
		log.Error("audit failed", "url", url, "error", err)
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg *config.Config, engine *audit.Engine, acquirer fetch.Acquirer, log *slog.Logger) error {
	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open report store: %w", err)
	}
	defer store.Close()

	if cfg.ReportRetention > 0 {
		go pruneLoop(ctx, store, cfg.ReportRetention, log)
	}

	srv := api.NewServer(cfg, engine, acquirer, store, log)
	return srv.Run(ctx)
}

func pruneLoop(ctx context.Context, store *storage.Store, retention time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PruneOlderThan(ctx, time.Now().Add(-retention))
			if err != nil {
				log.Error("report pruning failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("pruned old reports", "count", n)
			}
		}
	}
}

func runOnce(ctx context.Context, cfg *config.Config, engine *audit.Engine, acquirer fetch.Acquirer, url, format, output string, noCache bool) error {
	snap, err := acquirer.Acquire(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to acquire %s: %w", url, err)
	}

	opts := config.DefaultAnalysisOptions()
	if noCache {
		opts.UseCache = false
	}

	result, err := engine.Audit(ctx, snap, opts)
	if err != nil {
		return err
	}
	rep := report.New(url, result.Analysis, result.Score, result.Issues)

	out := os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return report.ExportJSON(out, rep)
	case "csv":
		return report.ExportCSV(out, rep)
	case "xlsx":
		return report.ExportXLSX(out, rep)
	default:
		return fmt.Errorf("unknown format %q, want json, csv or xlsx", format)
	}
}
