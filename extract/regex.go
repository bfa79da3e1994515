package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// nearKeywordRe matches currency amounts that appear shortly after a price
// keyword. These beat bare currency matches: "now $1,899.00" is almost
// always the product price, while a bare "$45" may be shipping or an
// instalment amount.
var nearKeywordRe = regexp.MustCompile(`(?i)(price|now|was)[^$]{0,50}\$\s*` + amountPattern)

// regexContextRadius is how much raw HTML around a match is kept as the
// candidate's neighbourhood for context scoring.
const regexContextRadius = 80

// collectRegex scans the raw document text for currency patterns, the lowest
// trust tier. Within each sub-strategy the LARGEST plausible value is kept:
// an instalment figure ("$45/week") is numerically smaller than the true
// price, so preferring the largest guards against it.
func collectRegex(rawHTML string, env Envelope) []Candidate[float64] {
	if c, ok := largestMatch(rawHTML, nearKeywordRe, 2, env, WeightRegexNear, ProvRegexNear); ok {
		return []Candidate[float64]{c}
	}
	if c, ok := largestMatch(rawHTML, currencyRe, 1, env, WeightRegexBare, ProvRegexBare); ok {
		return []Candidate[float64]{c}
	}
	return nil
}

// largestMatch runs re over the document and returns a candidate for the
// largest plausible captured amount, with the surrounding text attached.
func largestMatch(rawHTML string, re *regexp.Regexp, group int, env Envelope, weight int, provenance string) (Candidate[float64], bool) {
	idxs := re.FindAllStringSubmatchIndex(rawHTML, -1)
	best := Candidate[float64]{}
	found := false
	for _, loc := range idxs {
		start, end := loc[2*group], loc[2*group+1]
		if start < 0 {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(rawHTML[start:end], ",", ""), 64)
		if err != nil || !env.Contains(v) {
			continue
		}
		if !found || v > best.Value {
			lo := loc[0] - regexContextRadius
			if lo < 0 {
				lo = 0
			}
			hi := loc[1] + regexContextRadius
			if hi > len(rawHTML) {
				hi = len(rawHTML)
			}
			best = Candidate[float64]{
				Value:      v,
				Weight:     weight,
				Provenance: provenance,
				Context:    rawHTML[lo:hi],
			}
			found = true
		}
	}
	return best, found
}
