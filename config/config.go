package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Paths    PathsConfig
	Browser  BrowserConfig
	Fetch    FetchConfig
	Price    PriceConfig
	Discover DiscoverConfig
	Notify   NotifyConfig
	Serve    ServeConfig
	Log      LogConfig
}

// PathsConfig locates the config inputs and run outputs.
type PathsConfig struct {
	// StoresFile is the scrape target list written by discovery.
	StoresFile string // default: "config/stores.yml"

	// CatalogFile is the discovery catalog.
	CatalogFile string // default: "config/retailers.yml"

	// OutDir holds latest.json, history.json, index.html and debug HTML.
	OutDir string // default: "out"
}

// BrowserConfig controls the rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional proxy URL for all requests.
	Proxy string
}

// FetchConfig controls fetching behavior.
type FetchConfig struct {
	// Timeout is the hard deadline per page fetch, browser path included.
	Timeout time.Duration // default: 60s

	// HTTPTimeout is the deadline for the plain HTTP attempt before
	// escalating to the browser.
	HTTPTimeout time.Duration // default: 8s

	// SettleDelay is how long to wait after DOM stability before reading
	// the page, letting late price widgets hydrate.
	SettleDelay time.Duration // default: 1500ms

	// Delay is the politeness pause between consecutive store fetches.
	// Retailer sites are rate-sensitive; concurrent or rapid hits risk
	// anti-bot blocking.
	Delay time.Duration // default: 3s

	// Stealth toggles stealth JS injection on the browser path.
	Stealth bool // default: true

	// BlockedResourceTypes lists resource types the browser never loads.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// PriceConfig is the plausibility envelope for the tracked product category.
type PriceConfig struct {
	// Min and Max bound the closed interval of believable prices.
	Min float64 // default: 1100
	Max float64 // default: 3000
}

// DiscoverConfig controls target discovery thresholds.
type DiscoverConfig struct {
	// MinLinkScore is the minimum ranking score a search-result link must
	// reach before its page is even visited.
	MinLinkScore int // default: 3

	// TitleSlack is how many query tokens the destination page title may
	// miss and still verify.
	TitleSlack int // default: 3
}

// NotifyConfig controls the price-drop webhook.
type NotifyConfig struct {
	// WebhookURL receives a signed event when the lowest price drops.
	// Empty disables notification.
	WebhookURL string

	// Secret signs the webhook body with HMAC-SHA256 when non-empty.
	Secret string
}

// ServeConfig controls the report server.
type ServeConfig struct {
	Addr string // default: "127.0.0.1:8750"
	Mode string // "debug", "release", "test"; default: "release"
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// TZOffsetHours is read separately because the snapshot timestamp and the
// history date must use one fixed offset, never the host zone: a tracker
// re-run from CI in another region must not fork the calendar date.
func (c *Config) TZOffsetHours() int {
	return envIntOr("TRACK_TZ_OFFSET_HOURS", 10)
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Paths: PathsConfig{
			StoresFile:  envOr("TRACK_STORES_FILE", "config/stores.yml"),
			CatalogFile: envOr("TRACK_CATALOG_FILE", "config/retailers.yml"),
			OutDir:      envOr("TRACK_OUT_DIR", "out"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("TRACK_HEADLESS", true),
			NoSandbox:  envBoolOr("TRACK_NO_SANDBOX", false),
			BrowserBin: os.Getenv("TRACK_BROWSER_BIN"),
			Proxy:      os.Getenv("TRACK_PROXY"),
		},
		Fetch: FetchConfig{
			Timeout:     envDurationOr("TRACK_FETCH_TIMEOUT", 60*time.Second),
			HTTPTimeout: envDurationOr("TRACK_HTTP_TIMEOUT", 8*time.Second),
			SettleDelay: envDurationOr("TRACK_SETTLE_DELAY", 1500*time.Millisecond),
			Delay:       envDurationOr("TRACK_FETCH_DELAY", 3*time.Second),
			Stealth:     envBoolOr("TRACK_STEALTH", true),
			BlockedResourceTypes: envSliceOr("TRACK_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Price: PriceConfig{
			Min: envFloatOr("TRACK_PRICE_MIN", 1100),
			Max: envFloatOr("TRACK_PRICE_MAX", 3000),
		},
		Discover: DiscoverConfig{
			MinLinkScore: envIntOr("TRACK_MIN_LINK_SCORE", 3),
			TitleSlack:   envIntOr("TRACK_TITLE_SLACK", 3),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("TRACK_WEBHOOK_URL"),
			Secret:     os.Getenv("TRACK_WEBHOOK_SECRET"),
		},
		Serve: ServeConfig{
			Addr: envOr("TRACK_SERVE_ADDR", "127.0.0.1:8750"),
			Mode: envOr("TRACK_SERVE_MODE", "release"),
		},
		Log: LogConfig{
			Level:  envOr("TRACK_LOG_LEVEL", "info"),
			Format: envOr("TRACK_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
