package extract

import "sort"

// Provenance tags identifying which strategy produced a candidate.
// Used for weighting tiers and diagnostics only.
const (
	ProvStoreLocator   = "store-locator"
	ProvMeta           = "meta"
	ProvGenericLocator = "generic-locator"
	ProvStructured     = "structured-data"
	ProvRegexNear      = "regex-near-keyword"
	ProvRegexBare      = "regex-bare"
	ProvLinkRank       = "link-rank"
)

// Base weights per provenance tier. Structured data and meta tags are trusted
// most; a bare regex hit on raw HTML is trusted least.
const (
	WeightStoreLocator   = 8
	WeightMeta           = 7
	WeightStructured     = 7
	WeightGenericLocator = 5
	WeightRegexNear      = 3
	WeightRegexBare      = 1
)

// Candidate is a provisional extracted value with a confidence weight, the
// strategy that produced it, and the local text neighbourhood used by the
// context scorer. Candidates are ephemeral — produced and consumed within a
// single extraction call.
type Candidate[T any] struct {
	Value      T
	Weight     int
	Provenance string
	Context    string
}

// Best returns the top candidate under a total order: weight descending,
// with prefer breaking ties between equal-weight values (prefer reports
// whether a should outrank b). The sort is stable, so a nil prefer keeps
// first-collected order among equals.
//
// An empty input returns ok=false; callers treat that as "no confident
// answer", which is an expected terminal outcome rather than an error.
func Best[T any](cands []Candidate[T], prefer func(a, b T) bool) (Candidate[T], bool) {
	if len(cands) == 0 {
		var zero Candidate[T]
		return zero, false
	}
	sorted := make([]Candidate[T], len(cands))
	copy(sorted, cands)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Weight != sorted[j].Weight {
			return sorted[i].Weight > sorted[j].Weight
		}
		if prefer != nil {
			return prefer(sorted[i].Value, sorted[j].Value)
		}
		return false
	})
	return sorted[0], true
}
