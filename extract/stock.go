package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StockState is the tri-state availability classification. Absence of signal
// is always representable — stock detection never errors.
type StockState int

const (
	StockUnknown StockState = iota
	StockIn
	StockOut
)

// Ptr converts the state to the nullable-bool wire shape used in snapshots.
func (s StockState) Ptr() *bool {
	switch s {
	case StockIn:
		v := true
		return &v
	case StockOut:
		v := false
		return &v
	}
	return nil
}

// GenericStockSelectors is the fallback locator library for the
// stock-status region when a store declares none.
var GenericStockSelectors = []string{
	"[data-testid='stock']",
	".availability",
	".stock-status",
	".stock",
	".product-availability",
	".in-stock",
}

var inStockPhrases = []string{
	"in stock",
	"available",
	"in-store",
	"ready to ship",
	"in stock online",
}

var outOfStockPhrases = []string{
	"out of stock",
	"sold out",
	"unavailable",
	"pre-order",
	"backorder",
}

// DetectStock classifies availability from the first locator that matches an
// element. With an override phrase configured, its presence is the sole
// determinant. Without one, negative vocabulary is checked before
// affirmative — "unavailable" must never satisfy the "available" substring.
// A locator whose text classifies as neither falls through to the next; no
// classification at all yields StockUnknown.
func DetectStock(doc *goquery.Document, selectors []string, override string) StockState {
	if len(selectors) == 0 {
		selectors = GenericStockSelectors
	}
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		text := strings.ToLower(strings.TrimSpace(node.Text()))
		if text == "" {
			continue
		}

		if override != "" {
			if strings.Contains(text, strings.ToLower(override)) {
				return StockIn
			}
			return StockOut
		}

		if containsAny(text, outOfStockPhrases) {
			return StockOut
		}
		if containsAny(text, inStockPhrases) {
			return StockIn
		}
	}
	return StockUnknown
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
