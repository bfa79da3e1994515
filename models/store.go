package models

// Store is one retailer target: where to look and, optionally, how to look.
// Locator lists are prioritized — a single selector is unreliable across
// retailer redesigns, so each field carries fallbacks in trust order.
// Stores are read-only during scraping runs.
type Store struct {
	Name           string   `yaml:"name"`
	URL            string   `yaml:"url"`
	PriceSelectors []string `yaml:"price_selectors,omitempty"`
	StockSelectors []string `yaml:"stock_selectors,omitempty"`
	InStockText    string   `yaml:"in_stock_text,omitempty"`
}

// StoreFile is the on-disk shape of the scrape target list (stores.yml).
// Written by discovery, read by the scraper.
type StoreFile struct {
	ProductID string  `yaml:"product_id"`
	Stores    []Store `yaml:"stores"`
}

// Retailer describes how to search one retailer's site during discovery.
type Retailer struct {
	Name               string   `yaml:"name"`
	SearchURL          string   `yaml:"search_url"` // must contain the {q} placeholder
	ResultItemSelector string   `yaml:"result_item_selector,omitempty"`
	PriceSelectors     []string `yaml:"price_selectors,omitempty"`
	TitleSelector      string   `yaml:"product_title_selector,omitempty"`
	StockSelectors     []string `yaml:"stock_selectors,omitempty"`
	InStockText        string   `yaml:"in_stock_text,omitempty"`
}

// Catalog is the discovery input (retailers.yml): the product query, the
// tokens used for match scoring, and the retailers to search.
type Catalog struct {
	Query       string     `yaml:"query"`
	Tokens      []string   `yaml:"tokens"`
	BonusTokens []string   `yaml:"bonus_tokens,omitempty"`
	MustInclude []Store    `yaml:"must_include,omitempty"`
	Retailers   []Retailer `yaml:"retailers"`
}
