package extract

import "testing"

func TestWalkStructured(t *testing.T) {
	env := Envelope{Min: 1100, Max: 3000}

	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{
			"direct price key",
			map[string]any{"price": 1899.00},
			1899.00, true,
		},
		{
			"price as string",
			map[string]any{"price": "1899.00"},
			1899.00, true,
		},
		{
			"nested offers",
			map[string]any{"offers": map[string]any{"price": "2,499.00"}},
			2499.00, true,
		},
		{
			"graph list",
			map[string]any{"@graph": []any{
				map[string]any{"@type": "WebPage"},
				map[string]any{"@type": "Product", "offers": map[string]any{"lowPrice": 1299.00}},
			}},
			1299.00, true,
		},
		{
			"implausible price skipped",
			map[string]any{"price": 45.00},
			0, false,
		},
		{
			"implausible direct but plausible nested",
			map[string]any{"price": 45.00, "offers": map[string]any{"price": 1899.00}},
			1899.00, true,
		},
		{
			"no price anywhere",
			map[string]any{"name": "GPU", "brand": "Example"},
			0, false,
		},
		{
			"top level list",
			[]any{map[string]any{"offers": map[string]any{"highPrice": 2999.00}}},
			2999.00, true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := walkStructured(tt.in, env)
			if ok != tt.ok || got != tt.want {
				t.Errorf("walkStructured = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCollectStructured_MalformedBlock(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
		{"@type":"Product","offers":{"price":"1,899.00"}} trailing garbage
	</script></head><body></body></html>`
	cands := collectStructured(mustDoc(t, html), Envelope{Min: 1100, Max: 3000})
	if len(cands) != 1 {
		t.Fatalf("expected 1 salvaged candidate, got %d", len(cands))
	}
	if cands[0].Value != 1899.00 {
		t.Errorf("salvaged price = %v, want 1899.00", cands[0].Value)
	}
}

func TestCollectRegex_PrefersLargestPlausible(t *testing.T) {
	env := Envelope{Min: 1000, Max: 3000}
	html := `<p>was $2,299.00</p><p>now $1,999.00</p>`
	cands := collectRegex(html, env)
	if len(cands) != 1 {
		t.Fatalf("expected exactly one regex candidate, got %d", len(cands))
	}
	if cands[0].Value != 2299.00 {
		t.Errorf("regex candidate = %v, want largest plausible 2299.00", cands[0].Value)
	}
	if cands[0].Provenance != ProvRegexNear {
		t.Errorf("provenance = %q, want %q", cands[0].Provenance, ProvRegexNear)
	}
}

func TestCollectRegex_BareFallback(t *testing.T) {
	env := Envelope{Min: 1000, Max: 3000}
	html := `<span>$1,450.00</span>`
	cands := collectRegex(html, env)
	if len(cands) != 1 {
		t.Fatalf("expected one bare candidate, got %d", len(cands))
	}
	if cands[0].Value != 1450.00 || cands[0].Provenance != ProvRegexBare {
		t.Errorf("got %+v, want 1450.00 via %s", cands[0], ProvRegexBare)
	}
}

func TestCollectRegex_NothingPlausible(t *testing.T) {
	env := Envelope{Min: 1000, Max: 3000}
	if cands := collectRegex(`<span>$45/week</span>`, env); len(cands) != 0 {
		t.Errorf("expected no candidates, got %d", len(cands))
	}
}
