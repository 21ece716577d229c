// Package analyzer classifies URLs by pattern: does a URL look like a
// product page, and is it a dead end that can never lead to one. Both
// predicates are pure functions of the URL string.
package analyzer

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/jmylchreest/prodcrawl/internal/config"
)

// Verdict is the result of classifying a single URL.
type Verdict struct {
	IsProduct bool
	Score     float64
	Reasons   []string
}

// nonHTMLExtensions matches asset paths that are never product pages.
var nonHTMLExtensions = regexp.MustCompile(
	`\.(css|js|json|xml|txt|pdf|zip|rar|exe|dmg|pkg|jpg|jpeg|png|gif|svg|ico|webp|mp4|mp3|wav)$`)

// Fixed dead-end path groups applied after the configurable catalog.
var (
	socialPaths     = regexp.MustCompile(`/(share|social|follow)`)
	newsletterPaths = regexp.MustCompile(`/(email|newsletter|subscribe)`)
	downloadPaths   = regexp.MustCompile(`/(download|file|attachment|document)`)
)

// Analyzer holds the compiled pattern catalogs and weights.
type Analyzer struct {
	productPatterns []productPattern
	deadEndPatterns []*regexp.Regexp
	weights         map[string]float64
}

type productPattern struct {
	source string
	re     *regexp.Regexp
}

// New compiles the catalogs into an Analyzer. Pattern compilation errors
// are reported with the offending pattern so catalog files are debuggable.
func New(patterns config.Patterns, weights map[string]float64) (*Analyzer, error) {
	if weights == nil {
		weights = config.DefaultProductURLWeights()
	}

	a := &Analyzer{weights: weights}

	for _, p := range patterns.ProductURL {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid product URL pattern %q: %w", p, err)
		}
		a.productPatterns = append(a.productPatterns, productPattern{source: p, re: re})
	}

	// Category order is fixed so the analyzer is deterministic regardless
	// of map iteration order.
	categories := make([]string, 0, len(patterns.DeadEnd))
	for category := range patterns.DeadEnd {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		for _, p := range patterns.DeadEnd[category] {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("invalid dead-end pattern %q in %s: %w", p, category, err)
			}
			a.deadEndPatterns = append(a.deadEndPatterns, re)
		}
	}

	return a, nil
}

// Classify decides whether a URL looks like a product page from its shape
// alone. The score feeds the frontier priority function; the reasons are
// logged, never used for control.
func (a *Analyzer) Classify(rawURL string) Verdict {
	rawURL = strings.ToLower(strings.TrimSpace(rawURL))

	parsed, err := url.Parse(rawURL)
	if rawURL == "" || err != nil {
		return Verdict{
			IsProduct: false,
			Score:     a.weights[config.URLWeightInvalid],
			Reasons:   []string{"invalid"},
		}
	}

	if a.IsDeadEnd(rawURL) {
		return Verdict{
			IsProduct: false,
			Score:     a.weights[config.URLWeightDeadEnd],
			Reasons:   []string{"dead-end"},
		}
	}

	for _, p := range a.productPatterns {
		if p.re.MatchString(parsed.Path) {
			return Verdict{
				IsProduct: true,
				Score:     a.weights[config.URLWeightProductPattern],
				Reasons:   []string{p.source},
			}
		}
	}

	return Verdict{}
}

// IsDeadEnd reports whether a URL can never lead to a product page:
// static assets, auth/legal/admin paths, search and filter endpoints,
// social and newsletter links, downloads.
func (a *Analyzer) IsDeadEnd(rawURL string) bool {
	rawURL = strings.ToLower(strings.TrimSpace(rawURL))
	if rawURL == "" {
		return true
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	path := parsed.Path

	if nonHTMLExtensions.MatchString(path) {
		return true
	}

	for _, re := range a.deadEndPatterns {
		if re.MatchString(path) || re.MatchString(rawURL) {
			return true
		}
	}

	if socialPaths.MatchString(path) ||
		newsletterPaths.MatchString(path) ||
		downloadPaths.MatchString(path) {
		return true
	}

	return false
}
