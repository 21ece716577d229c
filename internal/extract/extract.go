// Package extract turns one fetched page into crawl work: the in-scope
// child links to enqueue and the product verdict for the page itself.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/prodcrawl/internal/analyzer"
	"github.com/jmylchreest/prodcrawl/internal/classifier"
	"github.com/jmylchreest/prodcrawl/internal/urlutil"
)

// Result holds what one page contributes to the crawl.
type Result struct {
	Children []string // normalized, in-scope, non-dead-end child URLs
	Products []string // product page URLs found on this page (the page itself)
}

// Extractor parses pages and applies the classifier and URL analyzer.
type Extractor struct {
	classifier *classifier.Classifier
	analyzer   *analyzer.Analyzer
}

// New creates an extractor.
func New(cl *classifier.Classifier, an *analyzer.Analyzer) *Extractor {
	return &Extractor{classifier: cl, analyzer: an}
}

// Extract parses htmlBody, classifies the page, and collects child links
// scoped to seedHost. Links are resolved against pageURL, normalized, and
// filtered through the dead-end catalog before being returned.
func (e *Extractor) Extract(pageURL, htmlBody, seedHost string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var res Result

	if verdict := e.classifier.Analyze(doc, pageURL); verdict.IsProduct {
		res.Products = append(res.Products, pageURL)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return res, nil
	}

	seedHost = strings.ToLower(seedHost)
	seen := make(map[string]struct{})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}

		linkURL, err := url.Parse(href)
		if err != nil {
			return
		}
		if !linkURL.IsAbs() {
			linkURL = base.ResolveReference(linkURL)
		}

		normalized := urlutil.Normalize(linkURL.String())
		if normalized == "" {
			return
		}
		if urlutil.Host(normalized) != seedHost {
			return
		}
		if e.analyzer.IsDeadEnd(normalized) {
			return
		}
		if _, dup := seen[normalized]; dup {
			return
		}
		seen[normalized] = struct{}{}
		res.Children = append(res.Children, normalized)
	})

	return res, nil
}
