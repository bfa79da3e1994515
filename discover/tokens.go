package discover

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips diacritics via NFKD decomposition, and
// collapses everything outside [a-z0-9+ ] to single spaces, so token
// comparisons survive retailer typography ("RTX™ 4080" vs "rtx 4080").
func Normalize(s string) string {
	decomposed := norm.NFKD.String(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(decomposed))
	lastSpace := true
	for _, r := range decomposed {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '+':
			b.WriteRune(r)
			lastSpace = false
		case unicode.Is(unicode.Mn, r):
			// combining mark left over from decomposition — drop it
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// TokenOverlap counts how many query tokens appear as substrings of the
// normalized text. This is the sole signal for title verification and one of
// several for link ranking.
func TokenOverlap(text string, tokens []string) int {
	t := Normalize(text)
	n := 0
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if strings.Contains(t, strings.ToLower(tok)) {
			n++
		}
	}
	return n
}
