package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// amountPattern matches money amounts in both thousand-separated
// ("1,899.00") and plain ("1899.00") shapes. The separated alternative comes
// first so "1,899" is not split at the comma.
const amountPattern = `([0-9]{1,3}(?:,[0-9]{3})+(?:\.[0-9]{2})?|[0-9]+(?:\.[0-9]{2})?)`

// priceRe matches bare money amounts.
var priceRe = regexp.MustCompile(`\$?\s*` + amountPattern)

// currencyRe matches currency-prefixed amounts like "A$1,899.00" or "$1899".
// Preferred over priceRe when both match: an explicit currency sign is a far
// stronger price signal than a bare number.
var currencyRe = regexp.MustCompile(`(?i)A?\$\s*` + amountPattern)

// GenericPriceSelectors is the library of common price-bearing locators,
// tried on every page regardless of retailer. Meta/itemprop entries carry
// machine-readable values and get the higher meta weight; bare class names
// get the generic weight.
var GenericPriceSelectors = []string{
	"[itemprop='price']",
	"meta[itemprop='price']",
	"meta[property='product:price:amount']",
	"[data-price]",
	"[data-testid='product-price']",
	"[data-test='Price']",
	".price .amount",
	".price .price",
	".product-price",
	".price",
	".our-price",
	".final-price",
	".productView-price",
	".p-price",
	".price__current",
	".price-section .price",
	"span.price",
	"div.price",
}

// ParsePrice extracts a numeric amount from free text. Currency-prefixed
// matches win over bare numbers.
func ParsePrice(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	m := currencyRe.FindStringSubmatch(text)
	if m == nil {
		m = priceRe.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// PriceExtractor runs the pooled multi-strategy price pipeline over a
// rendered document. It is a pure function over its inputs; the zero
// Envelope accepts nothing, so callers must configure one.
type PriceExtractor struct {
	Envelope Envelope
}

// Extract collects candidates from every strategy, filters them against the
// plausibility envelope, scores each by its text neighbourhood, and returns
// the best survivor. ok=false means no confident answer — an expected
// outcome on pages with no usable signal.
func (e *PriceExtractor) Extract(doc *goquery.Document, rawHTML string, storeSelectors []string) (float64, bool) {
	cand, ok := e.BestCandidate(doc, rawHTML, storeSelectors)
	if !ok {
		return 0, false
	}
	return cand.Value, true
}

// BestCandidate is Extract with the winning candidate's provenance kept, for
// diagnostics.
func (e *PriceExtractor) BestCandidate(doc *goquery.Document, rawHTML string, storeSelectors []string) (Candidate[float64], bool) {
	pool := e.Collect(doc, rawHTML, storeSelectors)

	scored := make([]Candidate[float64], 0, len(pool))
	for _, c := range pool {
		if !e.Envelope.Contains(c.Value) {
			continue
		}
		c.Weight = scoreContext(c.Weight, c.Context)
		scored = append(scored, c)
	}

	// Weight ties go to the larger figure: it is statistically more likely
	// to be the full price than a discount delta or instalment fraction.
	return Best(scored, func(a, b float64) bool { return a > b })
}

// Collect pools the raw candidates from all strategies. No strategy
// short-circuits the others: a later strategy may hold a better-scored
// answer than an earlier one that merely matched first.
func (e *PriceExtractor) Collect(doc *goquery.Document, rawHTML string, storeSelectors []string) []Candidate[float64] {
	var pool []Candidate[float64]

	// a. Retailer-declared locators — highest trust tier.
	pool = append(pool, collectSelectors(doc, storeSelectors, WeightStoreLocator, ProvStoreLocator)...)

	// b. Generic locator library.
	for _, sel := range GenericPriceSelectors {
		weight, prov := WeightGenericLocator, ProvGenericLocator
		if strings.HasPrefix(sel, "meta") || strings.Contains(sel, "itemprop") {
			weight, prov = WeightMeta, ProvMeta
		}
		pool = append(pool, collectSelectors(doc, []string{sel}, weight, prov)...)
	}

	// c. Embedded structured product data (JSON-LD offer blocks).
	pool = append(pool, collectStructured(doc, e.Envelope)...)

	// d. Currency-pattern regex scan of the raw document.
	pool = append(pool, collectRegex(rawHTML, e.Envelope)...)

	return pool
}

// collectSelectors emits one candidate per first-matched element of each
// selector. Meta tags yield their content attribute; everything else yields
// its text. The candidate's context is its own text plus its structural
// parent's text, which the scorer later truncates.
func collectSelectors(doc *goquery.Document, selectors []string, weight int, provenance string) []Candidate[float64] {
	var out []Candidate[float64]
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}

		var raw string
		if goquery.NodeName(node) == "meta" {
			raw, _ = node.Attr("content")
			if raw == "" {
				raw, _ = node.Attr("value")
			}
		} else {
			raw = node.Text()
		}

		v, ok := ParsePrice(strings.TrimSpace(raw))
		if !ok {
			continue
		}
		out = append(out, Candidate[float64]{
			Value:      v,
			Weight:     weight,
			Provenance: provenance,
			Context:    neighbourhood(node),
		})
	}
	return out
}

// neighbourhood returns the element's own text plus its immediate parent's
// text. The parent usually carries the disqualifying vocabulary ("$45 per
// week with Afterpay") that the price element itself omits.
func neighbourhood(node *goquery.Selection) string {
	own := strings.TrimSpace(node.Text())
	parent := strings.TrimSpace(node.Parent().Text())
	if parent == "" {
		return own
	}
	return own + " " + parent
}
