// Package render implements the page-rendering capability the extraction
// pipeline depends on: fetch a URL, return the final HTML. It offers a cheap
// HTTP fetcher with a Chrome TLS fingerprint, a full rod browser fetcher for
// JavaScript-rendered storefronts, and a sequential escalation chain that
// remembers which fetcher a host needs.
package render

import "context"

// Result is the output of a successful fetch.
type Result struct {
	HTML       string
	Title      string
	FinalURL   string
	StatusCode int
	Fetcher    string
}

// Fetcher retrieves the rendered content of a URL. Implementations must
// honour ctx cancellation and bound their own navigation timeouts.
type Fetcher interface {
	// Name returns the fetcher identifier (e.g. "http", "browser").
	Name() string

	// Fetch retrieves the page content for the given URL.
	Fetch(ctx context.Context, url string) (*Result, error)
}
