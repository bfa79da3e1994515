package extract

import "strings"

// Envelope is the plausibility range for the tracked product category.
// Any candidate outside the closed interval [Min, Max] is discarded before
// scoring — this single check eliminates most false positives (shipping
// costs, unrelated page prices, SKU numbers misread as currency).
type Envelope struct {
	Min float64
	Max float64
}

// Contains reports whether v falls inside the closed interval.
func (e Envelope) Contains(v float64) bool {
	return v >= e.Min && v <= e.Max
}

// corroborating phrases nudge a candidate up: the surrounding markup looks
// like a buy box rather than incidental page chrome.
var corroborating = []string{
	"add to cart",
	"in stock",
	"buy now",
	"ready to ship",
}

// disqualifying phrases mark subscription/finance/rental noise. A single hit
// (-6) outweighs three corroborating hits (+2 each): a wrong confident price
// costs more than a missed one.
var disqualifying = []string{
	"per week",
	"a week",
	"p/w",
	"/wk",
	"per month",
	"afterpay",
	"zip pay",
	"klarna",
	"finance",
	"deposit",
	"interest free",
	"from $",
}

// contextWindow bounds the neighbourhood text so scoring stays O(1) per
// candidate even on pathological markup.
const contextWindow = 240

// scoreContext adjusts a candidate's base weight by the vocabulary found in
// its local text neighbourhood. Each phrase counts once regardless of how
// many times it appears.
func scoreContext(base int, neighbourhood string) int {
	text := strings.ToLower(neighbourhood)
	if len(text) > contextWindow {
		text = text[:contextWindow]
	}
	score := base
	for _, phrase := range corroborating {
		if strings.Contains(text, phrase) {
			score += 2
		}
	}
	for _, phrase := range disqualifying {
		if strings.Contains(text, phrase) {
			score -= 6
		}
	}
	return score
}
