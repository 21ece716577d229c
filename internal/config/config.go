// Package config holds the tunable knobs of the crawler: classifier
// feature weights, URL-analyzer weights, and the regex pattern catalogs.
// Defaults live in code; any of them can be overridden from a YAML file.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Feature weight keys recognised by the page classifier.
const (
	FeaturePricePresent    = "price_present"
	FeatureNoPriceAtAll    = "no_price_at_all"
	FeatureExactOneCTA     = "exact_one_cta"
	FeatureMultipleCTA     = "multiple_cta"
	FeatureSpecSection     = "spec_section"
	FeatureRelatedProducts = "related_products"
	FeatureNoInputsOrForms = "no_inputs_or_forms"
	FeatureURLProductMatch = "url_product_pattern"
)

// URL-analyzer weight keys.
const (
	URLWeightInvalid        = "invalid_url"
	URLWeightDeadEnd        = "dead_end_url"
	URLWeightProductPattern = "product_pattern"
)

// Config is the full crawler configuration.
type Config struct {
	MaxDepth int    `yaml:"max_depth" validate:"gte=0"`
	Fetchers int    `yaml:"fetchers" validate:"gte=1"`
	Output   string `yaml:"output" validate:"required"`

	FeatureWeights    map[string]float64 `yaml:"feature_weights" validate:"required,min=1"`
	ProductURLWeights map[string]float64 `yaml:"product_url_weights" validate:"required,min=1"`
	Patterns          Patterns           `yaml:"patterns"`
}

// Patterns holds the regex catalogs used by the URL analyzer. Both lists
// are data, not code: a YAML file can replace either wholesale.
type Patterns struct {
	// ProductURL is an ordered list of path regexes; platform-specific
	// patterns come before the generic ones and the first match wins.
	ProductURL []string `yaml:"product_url" validate:"required,min=1,dive,required"`

	// DeadEnd groups path/URL regexes by category (account_auth,
	// legal_info, company_info, api_technical, admin_backend,
	// search_filter, non_product_actions).
	DeadEnd map[string][]string `yaml:"dead_end" validate:"required,min=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MaxDepth:          3,
		Fetchers:          5,
		Output:            "product_urls.csv",
		FeatureWeights:    DefaultFeatureWeights(),
		ProductURLWeights: DefaultProductURLWeights(),
		Patterns:          DefaultPatterns(),
	}
}

// DefaultFeatureWeights returns the page-classifier weight table.
func DefaultFeatureWeights() map[string]float64 {
	return map[string]float64{
		FeaturePricePresent:    1.0,
		FeatureNoPriceAtAll:    -1.0,
		FeatureExactOneCTA:     2.0,
		FeatureMultipleCTA:     -1.0,
		FeatureSpecSection:     1.0,
		FeatureRelatedProducts: 1.0,
		FeatureNoInputsOrForms: -1.0,
		FeatureURLProductMatch: 2.0,
	}
}

// DefaultProductURLWeights returns the URL-analyzer weight table.
func DefaultProductURLWeights() map[string]float64 {
	return map[string]float64{
		URLWeightInvalid:        -3.0,
		URLWeightDeadEnd:        -2.0,
		URLWeightProductPattern: 1.0,
	}
}

// DefaultPatterns returns the built-in pattern catalogs.
func DefaultPatterns() Patterns {
	return Patterns{
		ProductURL: []string{
			// Marketplace-specific
			`/dp/[A-Z0-9]{10}`,
			`/gp/product/[A-Z0-9]{10}`,
			`/exec/obidos/ASIN/[A-Z0-9]{10}`,
			`/product-reviews/[A-Z0-9]{10}`,
			`/[^/]+/dp/[A-Z0-9]{10}`,
			`/itm/[0-9]+`,
			`/p/[0-9]+`,
			`/i/[0-9]+`,
			`/deals/[^/]+/[0-9]+`,
			`/ip/[^/]+/[0-9]+`,
			`/product/[^/]+/[0-9]+`,
			`/grocery/ip/[^/]+/[0-9]+`,
			`/p/[^/]+/-/A-[0-9]+`,
			`/product/[^/]+/-/A-[0-9]+`,
			`/listing/[0-9]+`,
			`/[^/]+/listing/[0-9]+`,
			`/products/[^/?]+`,
			`/collections/[^/]+/products/[^/?]+`,
			`/item/[0-9]+\.html`,
			`/store/product/[^/]+/[0-9]+\.html`,
			`/product-detail/[^/]+_[0-9]+\.html`,
			`/p/[^/]+/[0-9]+\.html`,

			// Generic
			`/product[s]?/[^/?]+`,
			`/item[s]?/[^/?]+`,
			`/p/[^/?]+`,
			`/goods/[^/?]+`,
			`/detail/[^/?]+`,
			`/product-[0-9]+`,
			`/item-[0-9]+`,
			`/[^/]+-p[0-9]+`,
			`/sku[/-][0-9A-Za-z]+`,
			`/catalog/product/view/id/[0-9]+`,
			`/[^/]+\.html\?.*product.*id=\d+`,
			`/product_info\.php\?products_id=\d+`,
		},
		DeadEnd: map[string][]string{
			"account_auth": {
				`/login`, `/signin`, `/sign-in`, `/register`, `/signup`, `/sign-up`,
				`/account`, `/profile`, `/my-account`, `/user`, `/member`,
				`/checkout`, `/cart`, `/basket`, `/bag`, `/wishlist`, `/favorites`,
				`/logout`, `/signout`, `/sign-out`,
			},
			"legal_info": {
				`/terms`, `/privacy`, `/policy`, `/legal`, `/disclaimer`,
				`/cookies`, `/gdpr`, `/compliance`, `/terms-of-service`,
				`/privacy-policy`, `/return-policy`, `/shipping-policy`,
			},
			"company_info": {
				`/about`, `/contact`, `/careers`, `/jobs`, `/investors`,
				`/press`, `/media`, `/news`, `/blog`, `/help`, `/support`,
				`/faq`, `/customer-service`, `/team`, `/company`,
			},
			"api_technical": {
				`/api/`, `/ajax/`, `/json/`, `/xml/`, `/rss/`, `/feed/`,
				`/webhook`, `/callback`, `/oauth`, `/auth/`, `/token`,
				`\.css`, `\.js`, `\.json`, `\.xml`, `\.txt`, `\.pdf`,
				`\.jpg`, `\.jpeg`, `\.png`, `\.gif`, `\.svg`, `\.ico`,
				`\.woff`, `\.ttf`, `\.eot`,
			},
			"admin_backend": {
				`/admin`, `/dashboard`, `/cms`, `/wp-admin`, `/backend`,
				`/manage`, `/control-panel`, `/administrator`,
			},
			"search_filter": {
				`/search`, `/filter`, `/sort`, `/compare`, `/reviews-only`,
				`/questions`, `/q&a`, `/specifications-only`,
			},
			"non_product_actions": {
				`/add-to-cart`, `/buy-now`, `/quick-view`, `/share`,
				`/email-friend`, `/track-order`, `/order-status`,
				`/download`, `/subscribe`, `/unsubscribe`, `/reviews`,
			},
		},
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LoadFile reads a YAML override file and merges it over the defaults.
// Only the keys present in the file are replaced.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := mergeFile(&cfg, path); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MergeWeightsFile overlays feature/URL weight overrides from a YAML file.
func (c *Config) MergeWeightsFile(path string) error {
	var overrides struct {
		FeatureWeights    map[string]float64 `yaml:"feature_weights"`
		ProductURLWeights map[string]float64 `yaml:"product_url_weights"`
	}
	data, err := os.ReadFile(path) //#nosec G304 -- user-specified config file
	if err != nil {
		return fmt.Errorf("failed to read weights file: %w", err)
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse weights file: %w", err)
	}
	for k, w := range overrides.FeatureWeights {
		c.FeatureWeights[k] = w
	}
	for k, w := range overrides.ProductURLWeights {
		c.ProductURLWeights[k] = w
	}
	return nil
}

// MergePatternsFile replaces the pattern catalogs with the ones in a YAML
// file. Catalogs are replaced wholesale, not appended.
func (c *Config) MergePatternsFile(path string) error {
	var overrides Patterns
	data, err := os.ReadFile(path) //#nosec G304 -- user-specified config file
	if err != nil {
		return fmt.Errorf("failed to read patterns file: %w", err)
	}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse patterns file: %w", err)
	}
	if len(overrides.ProductURL) > 0 {
		c.Patterns.ProductURL = overrides.ProductURL
	}
	if len(overrides.DeadEnd) > 0 {
		c.Patterns.DeadEnd = overrides.DeadEnd
	}
	return c.Validate()
}

func mergeFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //#nosec G304 -- user-specified config file
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}
