package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/use-agent/pricetrack/models"
	"gopkg.in/yaml.v3"
)

// LoadStores reads and validates the scrape target list (stores.yml).
// Validation failures are fatal configuration errors: a malformed target
// list must abort before any network activity.
func LoadStores(path string) (*models.StoreFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewTrackError(models.ErrCodeConfig, "read stores file", err)
	}

	var sf models.StoreFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, models.NewTrackError(models.ErrCodeConfig, "parse stores file", err)
	}

	if sf.ProductID == "" {
		return nil, models.NewTrackError(models.ErrCodeConfig, "stores file missing product_id", nil)
	}
	if len(sf.Stores) == 0 {
		return nil, models.NewTrackError(models.ErrCodeConfig, "stores file lists no stores", nil)
	}
	for i, s := range sf.Stores {
		if s.Name == "" || s.URL == "" {
			return nil, models.NewTrackError(models.ErrCodeConfig,
				fmt.Sprintf("store %d missing name or url", i), nil)
		}
		if err := validateSelectors(s.PriceSelectors); err != nil {
			return nil, models.NewTrackError(models.ErrCodeConfig,
				fmt.Sprintf("store %q price selectors", s.Name), err)
		}
		if err := validateSelectors(s.StockSelectors); err != nil {
			return nil, models.NewTrackError(models.ErrCodeConfig,
				fmt.Sprintf("store %q stock selectors", s.Name), err)
		}
	}
	return &sf, nil
}

// SaveStores writes the target list produced by discovery.
func SaveStores(path string, sf *models.StoreFile) error {
	raw, err := yaml.Marshal(sf)
	if err != nil {
		return models.NewTrackError(models.ErrCodeConfig, "marshal stores file", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// LoadCatalog reads and validates the discovery catalog (retailers.yml).
func LoadCatalog(path string) (*models.Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewTrackError(models.ErrCodeConfig, "read catalog file", err)
	}

	var cat models.Catalog
	if err := yaml.Unmarshal(raw, &cat); err != nil {
		return nil, models.NewTrackError(models.ErrCodeConfig, "parse catalog file", err)
	}

	if cat.Query == "" {
		return nil, models.NewTrackError(models.ErrCodeConfig, "catalog missing query", nil)
	}
	if len(cat.Tokens) == 0 {
		return nil, models.NewTrackError(models.ErrCodeConfig, "catalog missing tokens", nil)
	}
	for i, r := range cat.Retailers {
		if r.Name == "" {
			return nil, models.NewTrackError(models.ErrCodeConfig,
				fmt.Sprintf("retailer %d missing name", i), nil)
		}
		if !strings.Contains(r.SearchURL, "{q}") {
			return nil, models.NewTrackError(models.ErrCodeConfig,
				fmt.Sprintf("retailer %q search_url missing {q} placeholder", r.Name), nil)
		}
		if r.ResultItemSelector != "" {
			if err := validateSelectors([]string{r.ResultItemSelector}); err != nil {
				return nil, models.NewTrackError(models.ErrCodeConfig,
					fmt.Sprintf("retailer %q result_item_selector", r.Name), err)
			}
		}
		if err := validateSelectors(r.PriceSelectors); err != nil {
			return nil, models.NewTrackError(models.ErrCodeConfig,
				fmt.Sprintf("retailer %q price selectors", r.Name), err)
		}
	}
	return &cat, nil
}

// validateSelectors parses each CSS locator with cascadia so a typo in
// configuration surfaces at load time rather than as a silent non-match
// mid-run.
func validateSelectors(selectors []string) error {
	for _, sel := range selectors {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		if _, err := cascadia.Parse(sel); err != nil {
			return fmt.Errorf("invalid selector %q: %w", sel, err)
		}
	}
	return nil
}
