// Package track drives one scraping run: every configured store in
// sequence, per-store failure isolation, then the snapshot, the history
// upsert and the report.
package track

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pricetrack/config"
	"github.com/use-agent/pricetrack/extract"
	"github.com/use-agent/pricetrack/models"
	"github.com/use-agent/pricetrack/render"
	"golang.org/x/time/rate"
)

// Runner owns the run lifecycle. Stores are processed strictly
// sequentially: the browsing context is shared and retailer sites are rate
// sensitive, so concurrency here would be a correctness bug, not a
// performance win.
type Runner struct {
	fetcher   render.Fetcher
	extractor extract.PriceExtractor
	limiter   *rate.Limiter
	sink      DebugSink
	zone      *time.Location
	now       func() time.Time
}

// NewRunner wires a Runner. sink may be nil to disable the debug
// side-channel.
func NewRunner(fetcher render.Fetcher, cfg *config.Config, sink DebugSink) *Runner {
	return &Runner{
		fetcher:   fetcher,
		extractor: extract.PriceExtractor{Envelope: extract.Envelope{Min: cfg.Price.Min, Max: cfg.Price.Max}},
		limiter:   rate.NewLimiter(rate.Every(cfg.Fetch.Delay), 1),
		sink:      sink,
		zone:      time.FixedZone("", cfg.TZOffsetHours()*3600),
		now:       time.Now,
	}
}

// Run scrapes every store and assembles the snapshot. No single store
// failure aborts the run: operational errors become per-store results with
// a diagnostic string and a null price.
func (r *Runner) Run(ctx context.Context, sf *models.StoreFile) *models.Snapshot {
	results := make([]models.ExtractionResult, 0, len(sf.Stores))
	for _, store := range sf.Stores {
		res := r.scrapeStore(ctx, store)
		slog.Info("store scraped",
			"store", res.Store,
			"price", priceForLog(res.Price),
			"inStock", stockForLog(res.InStock),
			"error", res.Error,
		)
		results = append(results, res)
	}

	return &models.Snapshot{
		TS:        r.now().In(r.zone).Format(time.RFC3339),
		ProductID: sf.ProductID,
		Lowest:    lowestOf(results),
		Stores:    results,
	}
}

// scrapeStore renders one store page and extracts its price and stock
// signals. Every failure path returns a result rather than an error.
func (r *Runner) scrapeStore(ctx context.Context, store models.Store) models.ExtractionResult {
	result := models.ExtractionResult{Store: store.Name, URL: store.URL}

	if err := r.limiter.Wait(ctx); err != nil {
		result.Error = err.Error()
		return result
	}

	page, err := r.fetcher.Fetch(ctx, store.URL)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if r.sink != nil {
		r.sink.WriteDocument(store.Name, page.HTML)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if cand, ok := r.extractor.BestCandidate(doc, page.HTML, store.PriceSelectors); ok {
		v := cand.Value
		result.Price = &v
		slog.Debug("price candidate selected",
			"store", store.Name, "price", v,
			"provenance", cand.Provenance, "weight", cand.Weight)
	}

	result.InStock = extract.DetectStock(doc, store.StockSelectors, store.InStockText).Ptr()
	return result
}

// lowestOf picks the cheapest valid result, ties broken by
// first-encountered order. nil when no store produced a price.
func lowestOf(results []models.ExtractionResult) *models.ExtractionResult {
	var lowest *models.ExtractionResult
	for i := range results {
		p := results[i].Price
		if p == nil {
			continue
		}
		if lowest == nil || *p < *lowest.Price {
			r := results[i]
			lowest = &r
		}
	}
	return lowest
}

func priceForLog(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func stockForLog(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
