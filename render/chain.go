package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// Chain escalates sequentially through its fetchers: the cheap HTTP fetcher
// first, the browser when HTTP fails or returns an unrendered shell.
// Fetchers run one at a time, never raced — retailer sites are rate
// sensitive and a second concurrent hit is exactly what trips anti-bot
// blocking.
//
// A per-host memory records which fetcher last produced a usable page so
// later fetches against the same host skip the tiers that cannot serve it.
type Chain struct {
	fetchers []Fetcher
	memory   *HostMemory
}

// NewChain creates a Chain escalating through fetchers in order.
func NewChain(memory *HostMemory, fetchers ...Fetcher) *Chain {
	return &Chain{fetchers: fetchers, memory: memory}
}

func (c *Chain) Name() string { return "chain" }

// Fetch tries each tier in order and returns the first usable result.
// A tier's result is unusable when the needs-browser heuristics say the
// page is an unrendered shell and a heavier tier remains.
func (c *Chain) Fetch(ctx context.Context, targetURL string) (*Result, error) {
	host := extractHost(targetURL)
	start := 0
	if remembered := c.memory.Get(host); remembered != "" {
		for i, f := range c.fetchers {
			if f.Name() == remembered {
				start = i
				slog.Debug("host memory hit", "host", host, "fetcher", remembered)
				break
			}
		}
	}

	var lastErr error
	for i := start; i < len(c.fetchers); i++ {
		f := c.fetchers[i]
		result, err := f.Fetch(ctx, targetURL)
		if err != nil {
			slog.Debug("fetcher failed", "fetcher", f.Name(), "url", targetURL, "error", err)
			lastErr = err
			if ctx.Err() != nil {
				return nil, err
			}
			continue
		}
		// An HTTP-fetched SPA shell is not a failure, but a heavier tier
		// will see the rendered page — escalate if one remains.
		if i < len(c.fetchers)-1 && NeedsBrowser(result.HTML) {
			slog.Debug("page needs browser rendering, escalating",
				"fetcher", f.Name(), "url", targetURL)
			continue
		}
		c.memory.Set(host, f.Name())
		return result, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("render: all fetchers exhausted for %s", targetURL)
	}
	return nil, lastErr
}

// extractHost parses the hostname from a URL string.
func extractHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}

// hostEntry stores the preferred fetcher for a host with a TTL.
type hostEntry struct {
	fetcherName string
	expiresAt   time.Time
}

// HostMemory remembers which fetcher worked for each host. Entries expire
// after the configured TTL; expiry is checked on read, which is enough for
// a short-lived batch process.
type HostMemory struct {
	store sync.Map // host (string) -> *hostEntry
	ttl   time.Duration
}

// NewHostMemory creates a HostMemory with the given TTL.
func NewHostMemory(ttl time.Duration) *HostMemory {
	return &HostMemory{ttl: ttl}
}

// Get returns the remembered fetcher name for a host, or "" if not found or
// expired.
func (m *HostMemory) Get(host string) string {
	val, ok := m.store.Load(host)
	if !ok {
		return ""
	}
	entry := val.(*hostEntry)
	if time.Now().After(entry.expiresAt) {
		m.store.Delete(host)
		return ""
	}
	return entry.fetcherName
}

// Set records which fetcher succeeded for a host.
func (m *HostMemory) Set(host, fetcherName string) {
	m.store.Store(host, &hostEntry{
		fetcherName: fetcherName,
		expiresAt:   time.Now().Add(m.ttl),
	})
}
