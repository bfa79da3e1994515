package models

// ExtractionResult is the outcome of scraping one store in one run.
// Price and InStock are nil when no confident signal was found — that is a
// valid outcome, not an error. Error is set only for operational failures
// (navigation, timeout); it never reflects "no plausible candidate".
type ExtractionResult struct {
	Store   string   `json:"store"`
	Price   *float64 `json:"price"`
	InStock *bool    `json:"in_stock"`
	URL     string   `json:"url"`
	Error   string   `json:"error,omitempty"`
}

// Snapshot is one run's complete point-in-time result set. It overwrites the
// previous latest snapshot and is never merged.
type Snapshot struct {
	TS        string             `json:"ts"` // ISO-8601 with fixed UTC offset
	ProductID string             `json:"product_id"`
	Lowest    *ExtractionResult  `json:"lowest"`
	Stores    []ExtractionResult `json:"stores"`
}
