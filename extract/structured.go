package extract

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// priceKeys are the structured-data fields that may carry an offer price,
// checked in this order.
var priceKeys = []string{"price", "priceAmount", "lowPrice", "highPrice"}

// nestedKeys are the containers worth recursing into before falling back to
// a full value scan.
var nestedKeys = []string{"offers", "@graph", "aggregateOffer"}

// crudePriceRe salvages a price from ld+json blocks that fail to parse as
// JSON (some sites concatenate multiple objects or emit trailing garbage).
var crudePriceRe = regexp.MustCompile(`"price"\s*:\s*"?([0-9,]+\.\d{2})"?`)

// collectStructured parses every <script type="application/ld+json"> block
// and emits at most one candidate per block: the first plausible numeric hit
// found by the recursive walk.
func collectStructured(doc *goquery.Document, env Envelope) []Candidate[float64] {
	var out []Candidate[float64]
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}

		var data any
		if err := json.Unmarshal([]byte(text), &data); err != nil {
			// Best-effort salvage of malformed blocks.
			if m := crudePriceRe.FindStringSubmatch(text); m != nil {
				if v, perr := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); perr == nil && env.Contains(v) {
					out = append(out, Candidate[float64]{
						Value:      v,
						Weight:     WeightStructured,
						Provenance: ProvStructured,
						Context:    "",
					})
				}
			}
			return
		}

		if v, ok := walkStructured(data, env); ok {
			out = append(out, Candidate[float64]{
				Value:      v,
				Weight:     WeightStructured,
				Provenance: ProvStructured,
				Context:    "",
			})
		}
	})
	return out
}

// walkStructured searches a decoded JSON-LD value for a plausible price.
// Order of preference within a mapping: direct price keys, then the known
// nested containers, then every remaining value (keys sorted so the walk is
// deterministic — Go map iteration order is not).
func walkStructured(v any, env Envelope) (float64, bool) {
	switch node := v.(type) {
	case map[string]any:
		for _, k := range priceKeys {
			if raw, ok := node[k]; ok {
				if p, ok := structuredNumber(raw); ok && env.Contains(p) {
					return p, true
				}
			}
		}
		for _, k := range nestedKeys {
			if nested, ok := node[k]; ok {
				if p, ok := walkStructured(nested, env); ok {
					return p, true
				}
			}
		}
		keys := make([]string, 0, len(node))
		for k := range node {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if p, ok := walkStructured(node[k], env); ok {
				return p, true
			}
		}
	case []any:
		for _, item := range node {
			if p, ok := walkStructured(item, env); ok {
				return p, true
			}
		}
	}
	return 0, false
}

// structuredNumber coerces a structured-data price value, which sites encode
// as a JSON number, a plain numeric string, or a currency-formatted string.
func structuredNumber(raw any) (float64, bool) {
	switch val := raw.(type) {
	case float64:
		return val, true
	case string:
		return ParsePrice(val)
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	}
	return 0, false
}
