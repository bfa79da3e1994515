// Command pricetrack-serve exposes the latest run artifacts over HTTP: the
// report page, the current snapshot and the price history.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/use-agent/pricetrack/config"
	"github.com/use-agent/pricetrack/report"
)

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	router := report.NewRouter(cfg.Paths.OutDir, cfg.Serve.Mode, time.Now())
	srv := &http.Server{
		Addr:    cfg.Serve.Addr,
		Handler: router,
	}

	go func() {
		slog.Info("report server listening", "addr", cfg.Serve.Addr, "outDir", cfg.Paths.OutDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("report server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("report server forced shutdown", "error", err)
	} else {
		slog.Info("report server drained gracefully")
	}
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
