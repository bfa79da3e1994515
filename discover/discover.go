// Package discover resolves each retailer in the catalog to a concrete
// product page URL by searching the retailer's site, ranking the result
// links against the product query, and verifying the winner's title. Only
// links that clear both thresholds are persisted as scrape targets.
package discover

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/pricetrack/config"
	"github.com/use-agent/pricetrack/extract"
	"github.com/use-agent/pricetrack/models"
	"github.com/use-agent/pricetrack/render"
)

// State tracks a retailer's progress through the resolution gates.
type State int

const (
	StateSearch State = iota
	StateCandidatesFound
	StateTitleVerified
	StateAccepted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateSearch:
		return "search"
	case StateCandidatesFound:
		return "candidates-found"
	case StateTitleVerified:
		return "title-verified"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	}
	return "unknown"
}

// Link is one search-result candidate: anchor text plus resolved href.
type Link struct {
	Text string
	Href string
}

// productPathFragments are URL path pieces that mark product detail pages.
// Each one present is worth a fixed bonus.
var productPathFragments = []string{"/product", "/item", "/p/", "/buy", "/sku"}

const (
	pathFragmentBonus = 3
	bonusTokenValue   = 2
)

// Resolver runs the discovery pipeline against one catalog.
type Resolver struct {
	Fetcher render.Fetcher
	Cfg     config.DiscoverConfig
}

// Run resolves every retailer in the catalog and returns the de-duplicated
// target list. must_include entries bypass the pipeline unconditionally and
// win de-duplication against discovered entries of the same name.
// Per-retailer failures are logged and skipped — discovery is best-effort.
func (r *Resolver) Run(ctx context.Context, cat *models.Catalog) *models.StoreFile {
	var found []models.Store
	found = append(found, cat.MustInclude...)

	for _, retailer := range cat.Retailers {
		store, err := r.Resolve(ctx, retailer, cat)
		if err != nil {
			slog.Warn("retailer discovery failed", "retailer", retailer.Name, "error", err)
			continue
		}
		if store == nil {
			continue // rejected at a gate; already logged
		}
		found = append(found, *store)
	}

	seen := make(map[string]struct{}, len(found))
	stores := make([]models.Store, 0, len(found))
	for _, s := range found {
		if _, dup := seen[s.Name]; dup {
			continue
		}
		seen[s.Name] = struct{}{}
		stores = append(stores, s)
	}

	return &models.StoreFile{ProductID: cat.Query, Stores: stores}
}

// Resolve walks one retailer through SEARCH → CANDIDATES_FOUND →
// TITLE_VERIFIED → ACCEPTED. A nil store with nil error means the retailer
// was rejected at a gate (WeakMatchRejection) — not an operational failure.
func (r *Resolver) Resolve(ctx context.Context, retailer models.Retailer, cat *models.Catalog) (*models.Store, error) {
	searchURL := strings.ReplaceAll(retailer.SearchURL, "{q}", url.QueryEscape(cat.Query))
	slog.Debug("searching retailer",
		"retailer", retailer.Name, "url", searchURL, "state", StateSearch.String())

	page, err := r.Fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	links := collectLinks(page.HTML, page.FinalURL, retailer.ResultItemSelector)
	if len(links) == 0 {
		slog.Info("discovery rejected: no result links",
			"retailer", retailer.Name, "state", StateRejected.String())
		return nil, nil
	}
	slog.Debug("result links collected",
		"retailer", retailer.Name, "links", len(links), "state", StateCandidatesFound.String())

	cands := make([]extract.Candidate[Link], 0, len(links))
	for _, l := range links {
		cands = append(cands, extract.Candidate[Link]{
			Value:      l,
			Weight:     ScoreLink(l, cat.Tokens, cat.BonusTokens),
			Provenance: extract.ProvLinkRank,
		})
	}

	// Equal-weight links keep result-page order; retailers list their best
	// match first.
	best, _ := extract.Best(cands, nil)
	if best.Weight < r.Cfg.MinLinkScore {
		slog.Info("discovery rejected: top link below threshold",
			"retailer", retailer.Name, "score", best.Weight,
			"min", r.Cfg.MinLinkScore, "state", StateRejected.String())
		return nil, nil
	}

	// Secondary gate: the destination page's own title must still match the
	// query, or the ranked link was a lucky false positive.
	product, err := r.Fetcher.Fetch(ctx, best.Value.Href)
	if err != nil {
		return nil, err
	}
	title := extractProductTitle(product, retailer.TitleSelector)
	titleScore := TokenOverlap(title, cat.Tokens)
	minTitle := len(cat.Tokens) - r.Cfg.TitleSlack
	if titleScore < minTitle {
		slog.Info("discovery rejected: weak title match",
			"retailer", retailer.Name, "title", title,
			"score", titleScore, "min", minTitle, "state", StateRejected.String())
		return nil, nil
	}
	slog.Debug("title verified",
		"retailer", retailer.Name, "title", title, "state", StateTitleVerified.String())

	slog.Info("discovery accepted",
		"retailer", retailer.Name, "url", best.Value.Href,
		"linkScore", best.Weight, "titleScore", titleScore, "state", StateAccepted.String())

	return &models.Store{
		Name:           retailer.Name,
		URL:            best.Value.Href,
		PriceSelectors: retailer.PriceSelectors,
		StockSelectors: retailer.StockSelectors,
		InStockText:    retailer.InStockText,
	}, nil
}

// ScoreLink is the weighted multi-signal ranking for one result link:
// query-token overlap against the anchor text and the URL path, a fixed
// bonus per product path fragment, and catalog-specific bonus tokens.
func ScoreLink(l Link, tokens, bonusTokens []string) int {
	score := TokenOverlap(l.Text, tokens)

	path := l.Href
	if u, err := url.Parse(l.Href); err == nil {
		path = u.Path
	}
	score += TokenOverlap(strings.ReplaceAll(path, "-", " "), tokens)

	lowPath := strings.ToLower(path)
	for _, frag := range productPathFragments {
		if strings.Contains(lowPath, frag) {
			score += pathFragmentBonus
		}
	}

	for _, tok := range bonusTokens {
		if TokenOverlap(l.Text, []string{tok}) > 0 {
			score += bonusTokenValue
		}
	}
	return score
}

// collectLinks gathers result-link candidates. The retailer's own result
// locator is authoritative; when it matches nothing (or none is configured)
// fall back to enumerating same-host anchors so a retailer with a stale
// locator still gets ranked instead of silently dropped.
func collectLinks(rawHTML, baseURL, resultSelector string) []Link {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []Link
	appendAnchor := func(s *goquery.Selection, sameHostOnly bool) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if sameHostOnly && !strings.EqualFold(resolved.Host, base.Host) {
			return
		}
		links = append(links, Link{
			Text: strings.TrimSpace(s.Text()),
			Href: resolved.String(),
		})
	}

	if resultSelector != "" {
		doc.Find(resultSelector).Each(func(_ int, s *goquery.Selection) {
			if goquery.NodeName(s) != "a" {
				s = s.Find("a[href]").First()
				if s.Length() == 0 {
					return
				}
			}
			appendAnchor(s, false)
		})
	}
	if len(links) == 0 {
		doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
			appendAnchor(s, true)
		})
	}
	return links
}

// extractProductTitle pulls the product title from the destination page:
// the retailer's title locator first, then h1, then the document title.
func extractProductTitle(page *render.Result, titleSelector string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return page.Title
	}
	selectors := []string{}
	if titleSelector != "" {
		selectors = append(selectors, strings.Split(titleSelector, ",")...)
	}
	selectors = append(selectors, "h1")
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if text := strings.TrimSpace(node.Text()); text != "" {
				return text
			}
		}
	}
	return page.Title
}
