// Package history maintains the daily lowest-price time series: one entry
// per calendar date, ascending order, bounded retention.
package history

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"
)

// Retention is how many daily entries are kept. Once exceeded, the oldest
// dates are evicted first.
const Retention = 365

// Entry is one day's observation. LowestPrice is nil when no store produced
// a plausible price that day — the gap is recorded, not skipped.
type Entry struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	LowestPrice *float64 `json:"lowest_price"`
}

// Series is the ordered daily time series.
type Series []Entry

// Load reads the series from disk. A missing file is an empty series, not
// an error — the first run starts from nothing.
func Load(path string) (Series, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Series{}, nil
		}
		return nil, err
	}
	var s Series
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save writes the series to disk.
func (s Series) Save(path string) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// Upsert records the lowest price for a date. A same-date re-run replaces
// the existing entry in place (the second run wins); otherwise the entry is
// appended. The result is re-sorted by date and trimmed to Retention,
// evicting oldest entries first.
func (s Series) Upsert(date string, lowestPrice *float64) Series {
	replaced := false
	for i := range s {
		if s[i].Date == date {
			s[i].LowestPrice = lowestPrice
			replaced = true
			break
		}
	}
	if !replaced {
		s = append(s, Entry{Date: date, LowestPrice: lowestPrice})
	}

	sort.Slice(s, func(i, j int) bool { return s[i].Date < s[j].Date })

	if len(s) > Retention {
		s = s[len(s)-Retention:]
	}
	return s
}

// Latest returns the most recent entry, or ok=false for an empty series.
func (s Series) Latest() (Entry, bool) {
	if len(s) == 0 {
		return Entry{}, false
	}
	return s[len(s)-1], true
}
