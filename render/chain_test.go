package render

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubFetcher struct {
	name  string
	html  string
	err   error
	calls int
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(_ context.Context, url string) (*Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &Result{HTML: s.html, FinalURL: url, Fetcher: s.name}, nil
}

// renderedPage is long enough to pass the visible-text heuristics.
const renderedPage = `<html><body><h1>RTX 4080 Super</h1><p>` +
	`A fully rendered product page with plenty of visible body text so the ` +
	`needs-browser heuristics treat it as server-side rendered content. ` +
	`It lists the price, the stock status and the usual retailer boilerplate ` +
	`about shipping, returns and warranty terms for the product on offer.` +
	`</p></body></html>`

func TestChain_FirstTierWins(t *testing.T) {
	httpStub := &stubFetcher{name: "http", html: renderedPage}
	browserStub := &stubFetcher{name: "browser", html: renderedPage}
	chain := NewChain(NewHostMemory(time.Hour), httpStub, browserStub)

	res, err := chain.Fetch(context.Background(), "https://shop.example/p/1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Fetcher != "http" {
		t.Errorf("fetcher = %q, want http", res.Fetcher)
	}
	if browserStub.calls != 0 {
		t.Error("browser tier must not run when HTTP succeeds")
	}
}

func TestChain_EscalatesOnError(t *testing.T) {
	httpStub := &stubFetcher{name: "http", err: errors.New("boom")}
	browserStub := &stubFetcher{name: "browser", html: renderedPage}
	chain := NewChain(NewHostMemory(time.Hour), httpStub, browserStub)

	res, err := chain.Fetch(context.Background(), "https://shop.example/p/1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Fetcher != "browser" {
		t.Errorf("fetcher = %q, want browser after HTTP failure", res.Fetcher)
	}
}

func TestChain_EscalatesOnSPAShell(t *testing.T) {
	httpStub := &stubFetcher{name: "http", html: `<html><body><div id="root"></div></body></html>`}
	browserStub := &stubFetcher{name: "browser", html: renderedPage}
	chain := NewChain(NewHostMemory(time.Hour), httpStub, browserStub)

	res, err := chain.Fetch(context.Background(), "https://spa.example/p/1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if res.Fetcher != "browser" {
		t.Errorf("fetcher = %q, want browser for an SPA shell", res.Fetcher)
	}
}

func TestChain_HostMemorySkipsCheapTier(t *testing.T) {
	httpStub := &stubFetcher{name: "http", err: errors.New("blocked")}
	browserStub := &stubFetcher{name: "browser", html: renderedPage}
	chain := NewChain(NewHostMemory(time.Hour), httpStub, browserStub)

	if _, err := chain.Fetch(context.Background(), "https://fussy.example/p/1"); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if _, err := chain.Fetch(context.Background(), "https://fussy.example/p/2"); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if httpStub.calls != 1 {
		t.Errorf("http tier called %d times, want 1 (memory should skip it)", httpStub.calls)
	}
}

func TestChain_AllTiersFail(t *testing.T) {
	chain := NewChain(NewHostMemory(time.Hour),
		&stubFetcher{name: "http", err: errors.New("down")},
		&stubFetcher{name: "browser", err: errors.New("also down")},
	)
	if _, err := chain.Fetch(context.Background(), "https://dead.example/"); err == nil {
		t.Error("expected an error when every tier fails")
	}
}

func TestHostMemory_Expiry(t *testing.T) {
	m := NewHostMemory(10 * time.Millisecond)
	m.Set("shop.example", "browser")
	if got := m.Get("shop.example"); got != "browser" {
		t.Fatalf("Get = %q, want browser", got)
	}
	time.Sleep(20 * time.Millisecond)
	if got := m.Get("shop.example"); got != "" {
		t.Errorf("expired entry returned %q, want empty", got)
	}
}

func TestNeedsBrowser(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"rendered page", renderedPage, false},
		{"empty react root", `<html><body><div id="root"></div></body></html>`, true},
		{"tiny body", `<html><body><p>hi</p></body></html>`, true},
		{"noscript warning", `<html><body><noscript>Please enable JavaScript to continue` + renderedPage + `</noscript></body></html>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsBrowser(tt.html); got != tt.want {
				t.Errorf("NeedsBrowser = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractTitle(t *testing.T) {
	if got := extractTitle(`<html><head><title> RTX 4080 | Shop </title></head></html>`); got != "RTX 4080 | Shop" {
		t.Errorf("extractTitle = %q", got)
	}
	if got := extractTitle(`<html><head></head><body></body></html>`); got != "" {
		t.Errorf("extractTitle on titleless page = %q, want empty", got)
	}
}
