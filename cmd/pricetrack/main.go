// Command pricetrack runs one tracking pass: scrape every configured store,
// write the snapshot, update the daily history and render the report.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/use-agent/pricetrack/config"
	"github.com/use-agent/pricetrack/notify"
	"github.com/use-agent/pricetrack/render"
	"github.com/use-agent/pricetrack/track"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	stores, err := config.LoadStores(cfg.Paths.StoresFile)
	if err != nil {
		slog.Error("failed to load store file", "path", cfg.Paths.StoresFile, "error", err)
		os.Exit(1)
	}
	slog.Info("pricetrack starting",
		"productID", stores.ProductID,
		"stores", len(stores.Stores),
		"outDir", cfg.Paths.OutDir,
	)

	// HTTP first, browser only when a page needs it. The browser tier is
	// constructed eagerly so a broken Chrome install fails the run up front
	// rather than halfway through the store list.
	browser, err := render.NewBrowser(cfg.Browser, cfg.Fetch)
	if err != nil {
		slog.Error("failed to launch browser", "error", err)
		os.Exit(1)
	}
	defer browser.Close()

	fetcher := render.NewChain(
		render.NewHostMemory(24*time.Hour),
		render.NewHTTPFetcher(cfg.Fetch),
		browser,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink := &track.FileSink{Dir: filepath.Join(cfg.Paths.OutDir, "debug")}
	runner := track.NewRunner(fetcher, cfg, sink)

	snap := runner.Run(ctx, stores)
	if ctx.Err() != nil {
		slog.Warn("run interrupted, not committing partial results")
		os.Exit(1)
	}

	notifier := &notify.Notifier{URL: cfg.Notify.WebhookURL, Secret: cfg.Notify.Secret}
	if err := runner.Commit(snap, cfg.Paths.OutDir, notifier); err != nil {
		slog.Error("failed to commit run", "error", err)
		os.Exit(1)
	}

	// The webhook delivers asynchronously with retries; a one-shot process
	// must not exit under it.
	notifier.Wait()

	slog.Info("pricetrack finished")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
