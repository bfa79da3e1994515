// Command pricetrack-discover resolves the product catalog against each
// retailer's site search and writes the store file the tracker scrapes.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/pricetrack/config"
	"github.com/use-agent/pricetrack/discover"
	"github.com/use-agent/pricetrack/render"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	cat, err := config.LoadCatalog(cfg.Paths.CatalogFile)
	if err != nil {
		slog.Error("failed to load catalog", "path", cfg.Paths.CatalogFile, "error", err)
		os.Exit(1)
	}
	slog.Info("discovery starting",
		"query", cat.Query,
		"retailers", len(cat.Retailers),
		"mustInclude", len(cat.MustInclude),
	)

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

	resolver := &discover.Resolver{Fetcher: fetcher, Cfg: cfg.Discover}
	sf := resolver.Run(ctx, cat)
	if ctx.Err() != nil {
		slog.Warn("discovery interrupted, not writing store file")
		os.Exit(1)
	}

	if err := config.SaveStores(cfg.Paths.StoresFile, sf); err != nil {
		slog.Error("failed to write store file", "path", cfg.Paths.StoresFile, "error", err)
		os.Exit(1)
	}

	slog.Info("discovery finished",
		"path", cfg.Paths.StoresFile,
		"stores", len(sf.Stores),
	)
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
