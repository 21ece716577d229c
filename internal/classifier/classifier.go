// Package classifier scores a parsed page against a fixed feature set to
// decide whether it is a product page. The verdict is heuristic: a raw
// additive score squashed through a sigmoid, with a 0.8 confidence
// threshold.
package classifier

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/prodcrawl/internal/analyzer"
	"github.com/jmylchreest/prodcrawl/internal/config"
)

var (
	priceRe   = regexp.MustCompile(`(₹|\$|€)\s?\d{2,}`)
	ctaRe     = regexp.MustCompile(`(?i)add to cart|buy now|select size|select color`)
	specRe    = regexp.MustCompile(`(?i)product details|specifications|select size|add to wishlist|know your product`)
	relatedRe = regexp.MustCompile(`(?i)similar products|you may also like|recommended`)
)

// Verdict is the classification result for one page.
type Verdict struct {
	IsProduct   bool
	Confidence  float64
	Score       float64
	Explanation []string
}

// Classifier scores pages using a weight table and the URL analyzer.
type Classifier struct {
	analyzer *analyzer.Analyzer
	weights  map[string]float64
}

// New creates a classifier. A nil weights map selects the defaults.
func New(an *analyzer.Analyzer, weights map[string]float64) *Classifier {
	if weights == nil {
		weights = config.DefaultFeatureWeights()
	}
	return &Classifier{analyzer: an, weights: weights}
}

// Analyze scores a parsed document and its URL. It never panics: any
// failure inside scoring yields a zero verdict.
func (c *Classifier) Analyze(doc *goquery.Document, pageURL string) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("classifier recovered", "url", pageURL, "panic", r)
			v = Verdict{}
		}
	}()

	doc.Find("script, style").Remove()

	var score float64
	var explanation []string
	note := func(weight float64, msg string) {
		score += weight
		explanation = append(explanation, fmt.Sprintf("%+.1f: %s", weight, msg))
	}

	priceCount := countMatchingTextNodes(doc, priceRe)
	pricePresent := priceCount > 0
	if pricePresent {
		note(c.weights[config.FeaturePricePresent], fmt.Sprintf("price found (%d)", priceCount))
	} else {
		note(c.weights[config.FeatureNoPriceAtAll], "no price detected")
	}

	ctaCount := countMatchingTextNodes(doc, ctaRe)
	exactOneCTA := ctaCount == 1
	if exactOneCTA {
		note(c.weights[config.FeatureExactOneCTA], "exactly one call-to-action")
	} else {
		note(c.weights[config.FeatureMultipleCTA], fmt.Sprintf("%d call-to-action matches", ctaCount))
	}

	if countMatchingTextNodes(doc, specRe) > 0 {
		note(c.weights[config.FeatureSpecSection], "product details section")
	}

	if countMatchingTextNodes(doc, relatedRe) > 0 {
		note(c.weights[config.FeatureRelatedProducts], "related products section")
	}

	if doc.Find("input").Length() == 0 && doc.Find("form").Length() == 0 {
		note(c.weights[config.FeatureNoInputsOrForms], "no form or input fields")
	}

	if uv := c.analyzer.Classify(pageURL); uv.IsProduct {
		note(c.weights[config.FeatureURLProductMatch], "product URL pattern")
	}

	confidence := sigmoid(score)
	isProduct := confidence >= 0.8

	// Price and CTA are the load-bearing signals. Without either, the
	// remaining features are unreliable and the page is not a product.
	if !pricePresent && !exactOneCTA {
		confidence = 0
		isProduct = false
	}

	v = Verdict{
		IsProduct:   isProduct,
		Confidence:  confidence,
		Score:       score,
		Explanation: explanation,
	}

	slog.Debug("page classified",
		"url", pageURL,
		"score", score,
		"confidence", fmt.Sprintf("%.4f", confidence),
		"is_product", isProduct,
		"explanation", explanation)

	return v
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// countMatchingTextNodes counts individual text nodes matching a regex.
// Matching per node, not per document, keeps "exactly one CTA" meaningful
// on pages that repeat boilerplate inside one element.
func countMatchingTextNodes(doc *goquery.Document, re *regexp.Regexp) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode && re.MatchString(n.Data) {
			count++
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}
	return count
}
