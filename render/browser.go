package render

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/pricetrack/config"
	"github.com/use-agent/pricetrack/models"
	"github.com/ysmood/gson"
)

// Browser is the rod-backed fetcher. It keeps a single reusable tab: stores
// are scraped strictly sequentially (retailer sites are rate-sensitive and
// the browsing context is shared), so one tab is all a run ever needs.
type Browser struct {
	browser  *rod.Browser
	fetchCfg config.FetchConfig

	mu   sync.Mutex
	page *rod.Page
}

// NewBrowser launches a headless browser and connects to it.
func NewBrowser(browserCfg config.BrowserConfig, fetchCfg config.FetchConfig) (*Browser, error) {
	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.Proxy != "" {
		l = l.Proxy(browserCfg.Proxy)
	}

	// Stealth flags.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewTrackError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewTrackError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}

	return &Browser{browser: browser, fetchCfg: fetchCfg}, nil
}

func (b *Browser) Name() string { return "browser" }

// Fetch navigates the shared tab to the URL and returns the rendered HTML.
//
// Lifecycle per fetch:
//
//  1. Timeout guard       – hard deadline on the entire operation
//  2. Acquire tab         – create on first use, then reuse
//  3. Stealth + hijack    – must be installed before navigation
//  4. Navigate + settle   – DOM stability then a short hydration pause
//  5. Extract             – page.HTML() + document.title + final URL
//
// The cleanup navigation to about:blank uses the ORIGINAL page reference
// (without the request context), so it succeeds even after a timeout.
func (b *Browser) Fetch(ctx context.Context, targetURL string) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, b.fetchCfg.Timeout)
	defer cancel()

	page, err := b.acquirePage()
	if err != nil {
		return nil, models.NewTrackError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank", "error", navErr)
		}
	}()

	if b.fetchCfg.Stealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", evalErr)
		}
	}

	// A Google referer makes the visit look like organic search traffic.
	if u, parseErr := url.Parse(targetURL); parseErr == nil {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(map[string]string{
				"Referer": "https://www.google.com/search?q=" + url.QueryEscape(u.Hostname()),
			}),
		}.Call(page)
	}

	router := setupHijack(page, b.fetchCfg.BlockedResourceTypes)
	if router != nil {
		defer func() { _ = router.Stop() }()
	}

	p := page.Context(ctx)

	if navErr := p.Navigate(targetURL); navErr != nil {
		return nil, categorizeError(navErr, "navigation to target URL failed")
	}

	if stableErr := p.WaitDOMStable(300*time.Millisecond, 0.1); stableErr != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", stableErr)
	}

	// Let late price widgets hydrate before reading the document.
	if b.fetchCfg.SettleDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, categorizeError(ctx.Err(), "settle wait interrupted")
		case <-time.After(b.fetchCfg.SettleDelay):
		}
	}

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return nil, categorizeError(htmlErr, "failed to extract page HTML")
	}

	title := evalStringOrEmpty(p, `() => document.title`)
	finalURL := evalStringOrEmpty(p, `() => window.location.href`)
	if finalURL == "" {
		finalURL = targetURL
	}

	return &Result{
		HTML:     rawHTML,
		Title:    title,
		FinalURL: finalURL,
		Fetcher:  b.Name(),
	}, nil
}

// acquirePage creates the shared tab on first use.
func (b *Browser) acquirePage() (*rod.Page, error) {
	if b.page != nil {
		return b.page, nil
	}
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	b.page = page
	return page, nil
}

// Close kills the browser process. Call on shutdown to prevent zombie
// Chrome processes.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page != nil {
		_ = b.page.Close()
		b.page = nil
	}
	slog.Info("closing browser")
	b.browser.MustClose()
}

// evalStringOrEmpty evaluates a JS expression and returns the string result,
// swallowing any errors (useful for optional metadata extraction).
func evalStringOrEmpty(page *rod.Page, js string) string {
	res, err := page.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed TrackErrors so the orchestrator
// can report render timeouts distinctly from navigation failures.
func categorizeError(err error, msg string) *models.TrackError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewTrackError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewTrackError(models.ErrCodeTimeout, "fetch canceled", err)
	default:
		return models.NewTrackError(models.ErrCodeNavigation, msg, err)
	}
}
