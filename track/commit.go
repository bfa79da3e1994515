package track

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/use-agent/pricetrack/history"
	"github.com/use-agent/pricetrack/models"
	"github.com/use-agent/pricetrack/notify"
	"github.com/use-agent/pricetrack/report"
)

// Commit persists a snapshot: latest.json, the daily history upsert, the
// rendered report page, and the price-drop webhook when the new lowest
// undercuts the last recorded one. The webhook baseline is read before the
// upsert so a same-day re-run compares against the morning's price.
func (r *Runner) Commit(snap *models.Snapshot, outDir string, notifier *notify.Notifier) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	latestPath := filepath.Join(outDir, "latest.json")
	if err := os.WriteFile(latestPath, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", latestPath, err)
	}

	histPath := filepath.Join(outDir, "history.json")
	series, err := history.Load(histPath)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	var baseline *float64
	if prev, ok := series.Latest(); ok {
		baseline = prev.LowestPrice
	}

	var lowestPrice *float64
	if snap.Lowest != nil {
		lowestPrice = snap.Lowest.Price
	}
	date := r.now().In(r.zone).Format("2006-01-02")
	series = series.Upsert(date, lowestPrice)
	if err := series.Save(histPath); err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	if err := report.Write(outDir, snap, series); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	notifier.PriceDrop(snap.ProductID, baseline, snap.Lowest)

	slog.Info("run committed",
		"productID", snap.ProductID,
		"date", date,
		"stores", len(snap.Stores),
		"lowest", priceForLog(lowestPrice),
	)
	return nil
}
