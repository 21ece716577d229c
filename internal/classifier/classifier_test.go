package classifier

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/prodcrawl/internal/analyzer"
	"github.com/jmylchreest/prodcrawl/internal/config"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	an, err := analyzer.New(config.DefaultPatterns(), config.DefaultProductURLWeights())
	if err != nil {
		t.Fatalf("analyzer.New() failed: %v", err)
	}
	return New(an, nil)
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

const productHTML = `<html><body>
<h1>Classic Blue Shirt</h1>
<span class="price">₹499</span>
<form action="/cart/add"><input type="hidden" name="sku" value="123">
<button>Add to Cart</button></form>
<div class="details">Product Details: 100% cotton.</div>
</body></html>`

func TestAnalyze_ProductPage(t *testing.T) {
	c := newTestClassifier(t)

	v := c.Analyze(parseDoc(t, productHTML), "https://shop.test/p/123")
	if !v.IsProduct {
		t.Errorf("expected product verdict, got %+v", v)
	}
	if v.Confidence < 0.8 {
		t.Errorf("expected confidence >= 0.8, got %v", v.Confidence)
	}
	// price +1, one CTA +2, spec section +1, URL pattern +2
	if v.Score != 6.0 {
		t.Errorf("expected score 6.0, got %v", v.Score)
	}
	if len(v.Explanation) == 0 {
		t.Error("expected explanation lines for contributing features")
	}
}

func TestAnalyze_ShortCircuit_NoPriceNoCTA(t *testing.T) {
	c := newTestClassifier(t)

	html := `<html><body>
<h1>Our Story</h1>
<img src="/a.jpg"><img src="/b.jpg">
<a href="/p/1">one</a><a href="/p/2">two</a>
<div>Product Details: none.</div>
</body></html>`

	v := c.Analyze(parseDoc(t, html), "https://shop.test/p/999")
	if v.IsProduct {
		t.Error("page without price or CTA must not be a product")
	}
	if v.Confidence != 0 {
		t.Errorf("short-circuit must force confidence 0, got %v", v.Confidence)
	}
}

func TestAnalyze_MultipleCTAPenalty(t *testing.T) {
	c := newTestClassifier(t)

	single := `<html><body><p>$129</p><button>Buy Now</button><form><input></form></body></html>`
	double := `<html><body><p>$129</p><button>Buy Now</button><button>Add to Cart</button><form><input></form></body></html>`

	one := c.Analyze(parseDoc(t, single), "https://shop.test/x")
	two := c.Analyze(parseDoc(t, double), "https://shop.test/x")

	// exact_one_cta (+2) flips to multiple_cta (-1)
	if two.Score != one.Score-3 {
		t.Errorf("expected two-CTA score %v, got %v", one.Score-3, two.Score)
	}
}

func TestAnalyze_ScriptAndStyleIgnored(t *testing.T) {
	c := newTestClassifier(t)

	html := `<html><head><style>.x { content: "$4999"; }</style></head><body>
<script>var cta = "Add to Cart $999";</script>
<p>Plain content page</p>
</body></html>`

	v := c.Analyze(parseDoc(t, html), "https://shop.test/page")
	if v.IsProduct || v.Confidence != 0 {
		t.Errorf("prices and CTAs inside script/style must not count, got %+v", v)
	}
}

func TestAnalyze_NoInputsOrFormsPenalty(t *testing.T) {
	c := newTestClassifier(t)

	withForm := `<html><body><p>€45</p><button>Buy Now</button><form><input></form></body></html>`
	without := `<html><body><p>€45</p><button>Buy Now</button></body></html>`

	a := c.Analyze(parseDoc(t, withForm), "https://shop.test/x")
	b := c.Analyze(parseDoc(t, without), "https://shop.test/x")

	if b.Score != a.Score-1 {
		t.Errorf("expected no-form score %v, got %v", a.Score-1, b.Score)
	}
}

func TestAnalyze_WeightOverride(t *testing.T) {
	an, err := analyzer.New(config.DefaultPatterns(), config.DefaultProductURLWeights())
	if err != nil {
		t.Fatalf("analyzer.New() failed: %v", err)
	}

	weights := config.DefaultFeatureWeights()
	weights[config.FeaturePricePresent] = 5.0
	c := New(an, weights)

	v := c.Analyze(parseDoc(t, productHTML), "https://shop.test/p/123")
	// price +5, one CTA +2, spec section +1, URL pattern +2
	if v.Score != 10.0 {
		t.Errorf("expected overridden score 10.0, got %v", v.Score)
	}
}

func TestAnalyze_RelatedProducts(t *testing.T) {
	c := newTestClassifier(t)

	html := `<html><body><p>$59</p><button>Add to Cart</button>
<form><input></form>
<h2>You may also like</h2>
</body></html>`

	v := c.Analyze(parseDoc(t, html), "https://shop.test/thing")
	// price +1, one CTA +2, related +1
	if v.Score != 4.0 {
		t.Errorf("expected score 4.0, got %v", v.Score)
	}
}
