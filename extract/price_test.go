package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
		ok   bool
	}{
		{"plain dollars", "$1,899.00", 1899.00, true},
		{"aud prefix", "A$2,499.00", 2499.00, true},
		{"no cents", "$1899", 1899, true},
		{"embedded", "Now only $1,299.00 inc GST", 1299.00, true},
		{"bare number", "1450.00", 1450.00, true},
		{"empty", "", 0, false},
		{"no digits", "call for price", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParsePrice(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEnvelopeBounds(t *testing.T) {
	env := Envelope{Min: 1100, Max: 3000}

	tests := []struct {
		name string
		v    float64
		want bool
	}{
		{"lower bound accepted", 1100, true},
		{"one below lower rejected", 1099, false},
		{"upper bound accepted", 3000, true},
		{"one above upper rejected", 3001, false},
		{"mid range", 1899, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := env.Contains(tt.v); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}
}

func TestExtract_StoreLocatorWins(t *testing.T) {
	html := `<html><body>
		<div id="buy"><span class="sale-price">$1,799.00</span><button>Add to cart</button></div>
		<div class="price">$2,099.00</div>
	</body></html>`
	e := &PriceExtractor{Envelope: Envelope{Min: 1100, Max: 3000}}

	got, ok := e.Extract(mustDoc(t, html), html, []string{".sale-price"})
	if !ok {
		t.Fatal("expected a price, got none")
	}
	if got != 1799.00 {
		t.Errorf("Extract = %v, want 1799.00 (store locator outranks generic class)", got)
	}
}

func TestExtract_StructuredDataBlock(t *testing.T) {
	html := `<html><head>
		<script type="application/ld+json">
		{"@type":"Product","name":"GPU","offers":{"@type":"Offer","price":"1899.00","priceCurrency":"AUD"}}
		</script>
	</head><body><p>no visible price here</p></body></html>`
	e := &PriceExtractor{Envelope: Envelope{Min: 1100, Max: 3000}}

	got, ok := e.Extract(mustDoc(t, html), html, nil)
	if !ok {
		t.Fatal("expected structured-data price, got none")
	}
	if got != 1899.00 {
		t.Errorf("Extract = %v, want 1899.00", got)
	}
}

func TestExtract_InstalmentPenalized(t *testing.T) {
	// Both candidates are in range; the instalment line must lose on score,
	// never on luck.
	html := `<html><body>
		<span class="our-price">$1,450.00 per week with Afterpay</span>
		<span class="final-price">$1,899.00</span>
	</body></html>`
	e := &PriceExtractor{Envelope: Envelope{Min: 1100, Max: 3000}}

	got, ok := e.Extract(mustDoc(t, html), html, nil)
	if !ok {
		t.Fatal("expected a price, got none")
	}
	if got != 1899.00 {
		t.Errorf("Extract = %v, want 1899.00 (instalment figure must be penalized)", got)
	}
}

func TestExtract_InstalmentOutOfRangeFiltered(t *testing.T) {
	html := `<html><body><div class="finance">Just $45/week on finance</div></body></html>`
	e := &PriceExtractor{Envelope: Envelope{Min: 1100, Max: 3000}}

	if _, ok := e.Extract(mustDoc(t, html), html, nil); ok {
		t.Error("expected no confident answer when only an out-of-range instalment exists")
	}
}

func TestExtract_MetaTagContent(t *testing.T) {
	html := `<html><head><meta itemprop="price" content="2499.00"></head><body></body></html>`
	e := &PriceExtractor{Envelope: Envelope{Min: 1100, Max: 3000}}

	got, ok := e.Extract(mustDoc(t, html), html, nil)
	if !ok {
		t.Fatal("expected meta price, got none")
	}
	if got != 2499.00 {
		t.Errorf("Extract = %v, want 2499.00", got)
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	e := &PriceExtractor{Envelope: Envelope{Min: 1100, Max: 3000}}
	if _, ok := e.Extract(mustDoc(t, "<html><body></body></html>"), "", nil); ok {
		t.Error("expected no answer from an empty document")
	}
}

func TestScoreContext(t *testing.T) {
	tests := []struct {
		name    string
		base    int
		context string
		want    int
	}{
		{"neutral", 5, "just a price", 5},
		{"one corroborating", 5, "Add to cart now", 7},
		{"one disqualifying", 5, "only $45 per week", -1},
		{"disqualifying dominates", 5, "add to cart in stock buy now per week", 5 + 6 - 6},
		{"phrase counted once", 5, "per week per week per week", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreContext(tt.base, tt.context); got != tt.want {
				t.Errorf("scoreContext(%d, %q) = %d, want %d", tt.base, tt.context, got, tt.want)
			}
		})
	}
}
