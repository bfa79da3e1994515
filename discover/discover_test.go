package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/use-agent/pricetrack/config"
	"github.com/use-agent/pricetrack/models"
	"github.com/use-agent/pricetrack/render"
)

// fakeFetcher serves canned pages keyed by URL prefix match.
type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*render.Result, error) {
	html, ok := f.pages[url]
	if !ok {
		return nil, errors.New("no page for " + url)
	}
	return &render.Result{HTML: html, FinalURL: url, Fetcher: "fake"}, nil
}

var testCatalog = models.Catalog{
	Query:  "rtx 4080 super 16gb",
	Tokens: []string{"rtx", "4080", "super", "16gb"},
}

func testResolver(f *fakeFetcher) *Resolver {
	return &Resolver{
		Fetcher: f,
		Cfg:     config.DiscoverConfig{MinLinkScore: 3, TitleSlack: 3},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"RTX™ 4080 SUPER", "rtx 4080 super"},
		{"  spaced   out  ", "spaced out"},
		{"Café-Grade GPU!", "cafe grade gpu"},
		{"a+b", "a+b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenOverlap(t *testing.T) {
	tokens := []string{"rtx", "4080", "super", "16gb"}
	tests := []struct {
		name string
		text string
		want int
	}{
		{"full match", "MSI RTX 4080 SUPER 16GB Gaming X", 4},
		{"partial", "RTX 4080 Graphics Card", 2},
		{"none", "AMD Radeon RX 7900", 0},
		{"empty text", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenOverlap(tt.text, tokens); got != tt.want {
				t.Errorf("TokenOverlap(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestScoreLink(t *testing.T) {
	tokens := []string{"rtx", "4080", "super"}

	product := Link{
		Text: "MSI RTX 4080 SUPER Gaming",
		Href: "https://shop.example/product/rtx-4080-super",
	}
	blog := Link{
		Text: "Is the RTX 4080 worth it? Our review",
		Href: "https://shop.example/blog/gpu-roundup",
	}

	ps := ScoreLink(product, tokens, nil)
	bs := ScoreLink(blog, tokens, nil)
	if ps <= bs {
		t.Errorf("product link scored %d, blog link %d; product must rank higher", ps, bs)
	}

	// 3 text tokens + 3 path tokens + path fragment bonus.
	if want := 3 + 3 + pathFragmentBonus; ps != want {
		t.Errorf("ScoreLink(product) = %d, want %d", ps, want)
	}

	withBonus := ScoreLink(product, tokens, []string{"msi"})
	if withBonus != ps+bonusTokenValue {
		t.Errorf("bonus token: got %d, want %d", withBonus, ps+bonusTokenValue)
	}
}

const searchPage = `<html><body><ul>
	<li><a class="result" href="/product/rtx-4080-super-16gb">MSI RTX 4080 SUPER 16GB</a></li>
	<li><a class="result" href="/blog/buying-guide">GPU buying guide</a></li>
</ul></body></html>`

const productPage = `<html><head><title>shop</title></head><body>
	<h1>MSI GeForce RTX 4080 SUPER 16GB Gaming X Slim</h1>
</body></html>`

func TestResolve_Accepted(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://shop.example/search?q=rtx+4080+super+16gb":  searchPage,
		"https://shop.example/product/rtx-4080-super-16gb":   productPage,
	}}
	retailer := models.Retailer{
		Name:               "ExampleShop",
		SearchURL:          "https://shop.example/search?q={q}",
		ResultItemSelector: "a.result",
		PriceSelectors:     []string{".price"},
	}

	store, err := testResolver(f).Resolve(context.Background(), retailer, &testCatalog)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if store == nil {
		t.Fatal("expected an accepted store, got rejection")
	}
	if store.URL != "https://shop.example/product/rtx-4080-super-16gb" {
		t.Errorf("store URL = %q", store.URL)
	}
	if store.Name != "ExampleShop" || len(store.PriceSelectors) != 1 {
		t.Errorf("store carried wrong retailer fields: %+v", store)
	}
}

func TestResolve_RejectsWeakLinks(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://shop.example/search?q=rtx+4080+super+16gb": `<html><body>
			<a class="result" href="/blog/news">Unrelated news post</a>
		</body></html>`,
	}}
	retailer := models.Retailer{
		Name:               "ExampleShop",
		SearchURL:          "https://shop.example/search?q={q}",
		ResultItemSelector: "a.result",
	}

	store, err := testResolver(f).Resolve(context.Background(), retailer, &testCatalog)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if store != nil {
		t.Errorf("expected rejection below MinLinkScore, got %+v", store)
	}
}

func TestResolve_RejectsWeakTitle(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://shop.example/search?q=rtx+4080+super+16gb": searchPage,
		"https://shop.example/product/rtx-4080-super-16gb": `<html><body>
			<h1>Page not found</h1>
		</body></html>`,
	}}
	retailer := models.Retailer{
		Name:               "ExampleShop",
		SearchURL:          "https://shop.example/search?q={q}",
		ResultItemSelector: "a.result",
	}

	store, err := testResolver(f).Resolve(context.Background(), retailer, &testCatalog)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if store != nil {
		t.Errorf("expected rejection on weak title, got %+v", store)
	}
}

func TestResolve_FallsBackToSameHostAnchors(t *testing.T) {
	// Result locator matches nothing; same-host anchor enumeration must
	// still find the product link, and the off-host link must be ignored.
	f := &fakeFetcher{pages: map[string]string{
		"https://shop.example/search?q=rtx+4080+super+16gb": `<html><body>
			<a href="/p/rtx-4080-super-16gb">RTX 4080 SUPER 16GB</a>
			<a href="https://other.example/rtx-4080-super-16gb">RTX 4080 SUPER 16GB elsewhere</a>
		</body></html>`,
		"https://shop.example/p/rtx-4080-super-16gb": productPage,
	}}
	retailer := models.Retailer{
		Name:               "ExampleShop",
		SearchURL:          "https://shop.example/search?q={q}",
		ResultItemSelector: ".stale-selector",
	}

	store, err := testResolver(f).Resolve(context.Background(), retailer, &testCatalog)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if store == nil {
		t.Fatal("expected acceptance via anchor fallback")
	}
	if store.URL != "https://shop.example/p/rtx-4080-super-16gb" {
		t.Errorf("store URL = %q, want same-host product link", store.URL)
	}
}

func TestRun_MustIncludeBypassesPipeline(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{}} // every fetch fails
	cat := testCatalog
	cat.MustInclude = []models.Store{{Name: "FixedShop", URL: "https://fixed.example/p/1"}}
	cat.Retailers = []models.Retailer{{
		Name:      "BrokenShop",
		SearchURL: "https://broken.example/search?q={q}",
	}}

	sf := testResolver(f).Run(context.Background(), &cat)
	if len(sf.Stores) != 1 || sf.Stores[0].Name != "FixedShop" {
		t.Fatalf("stores = %+v, want only the must-include entry", sf.Stores)
	}
	if sf.ProductID != cat.Query {
		t.Errorf("ProductID = %q, want %q", sf.ProductID, cat.Query)
	}
}

func TestRun_DeduplicatesByName(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		"https://shop.example/search?q=rtx+4080+super+16gb": searchPage,
		"https://shop.example/product/rtx-4080-super-16gb":  productPage,
	}}
	cat := testCatalog
	cat.MustInclude = []models.Store{{Name: "ExampleShop", URL: "https://fixed.example/pinned"}}
	cat.Retailers = []models.Retailer{{
		Name:               "ExampleShop",
		SearchURL:          "https://shop.example/search?q={q}",
		ResultItemSelector: "a.result",
	}}

	sf := testResolver(f).Run(context.Background(), &cat)
	if len(sf.Stores) != 1 {
		t.Fatalf("got %d stores, want 1 after de-duplication", len(sf.Stores))
	}
	if sf.Stores[0].URL != "https://fixed.example/pinned" {
		t.Errorf("must-include entry must win de-duplication, got %q", sf.Stores[0].URL)
	}
}
