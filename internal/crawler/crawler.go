// Package crawler orchestrates the per-seed crawl: fetcher workers pull
// URLs from the frontier and push fetched pages onto an html channel; a
// single parser worker classifies pages, feeds discovered links back into
// the frontier, and emits product URLs to the sink. The work tracker is
// the termination oracle — the frontier alone cannot detect completion
// because in-flight pages may still produce new frontier entries.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/prodcrawl/internal/analyzer"
	"github.com/jmylchreest/prodcrawl/internal/extract"
	"github.com/jmylchreest/prodcrawl/internal/fetch"
	"github.com/jmylchreest/prodcrawl/internal/frontier"
	"github.com/jmylchreest/prodcrawl/internal/logger"
	"github.com/jmylchreest/prodcrawl/internal/output"
	"github.com/jmylchreest/prodcrawl/internal/tracker"
	"github.com/jmylchreest/prodcrawl/internal/urlutil"
)

// htmlChannelBuffer sizes the fetcher-to-parser channel. Backpressure
// comes from the fetch semaphore; the buffer only has to absorb bursts.
const htmlChannelBuffer = 256

// Fetcher abstracts page retrieval so tests can crawl an in-memory site.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (fetch.Result, error)
}

// Config holds orchestrator settings.
type Config struct {
	MaxDepth int // seed is depth 0
	Fetchers int // concurrent fetch workers per seed
}

// DefaultConfig returns the standard crawl settings.
func DefaultConfig() Config {
	return Config{MaxDepth: 3, Fetchers: 5}
}

// Record is one emitted product URL.
type Record struct {
	SeedDomain string
	ProductURL string
}

// Crawler drives crawls over one or more seeds.
type Crawler struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	analyzer  *analyzer.Analyzer
	sink      output.Writer
	config    Config
}

// New creates a crawler.
func New(f Fetcher, ex *extract.Extractor, an *analyzer.Analyzer, sink output.Writer, cfg Config) *Crawler {
	if cfg.Fetchers < 1 {
		cfg.Fetchers = 1
	}
	return &Crawler{
		fetcher:   f,
		extractor: ex,
		analyzer:  an,
		sink:      sink,
		config:    cfg,
	}
}

// htmlItem is one fetched page awaiting parsing. A nil item is the
// parser's shutdown sentinel.
type htmlItem struct {
	url   string
	html  string
	depth int
}

// CrawlAll crawls each seed in turn. Seeds are independent: a failing
// seed is reported but does not stop the rest.
func (c *Crawler) CrawlAll(ctx context.Context, seeds []string) ([]Record, error) {
	var all []Record
	var errs []error

	for _, seed := range seeds {
		records, err := c.Crawl(ctx, seed)
		if err != nil {
			slog.Error("crawl failed", "seed", seed, "error", err)
			errs = append(errs, fmt.Errorf("seed %s: %w", seed, err))
			continue
		}
		all = append(all, records...)
	}

	return all, errors.Join(errs...)
}

// Crawl walks one seed's site graph to the depth limit and returns the
// product records emitted along the way. It blocks until the pipeline is
// quiescent and all workers have exited.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) ([]Record, error) {
	seed := urlutil.Normalize(seedURL)
	if seed == "" {
		return nil, fmt.Errorf("invalid seed URL %q", seedURL)
	}

	tr := tracker.New()
	fr, err := frontier.New(seed, c.analyzer, tr, c.config.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}
	seedHost := fr.Host()

	// Every line from this crawl carries the seed host, so output from
	// consecutive seeds stays attributable.
	log := logger.WithSeed(seedHost)

	start := time.Now()
	log.Info("crawl starting",
		"url", seed,
		"max_depth", c.config.MaxDepth,
		"fetchers", c.config.Fetchers)

	// Seed enters at depth -1 so its admitted depth is 0. Dead-end
	// filtering applies to discovered links, never to the seed itself.
	if fr.Add([]string{seed}, -1) == 0 {
		return nil, fmt.Errorf("seed URL %q was not admitted to the frontier", seedURL)
	}

	htmlCh := make(chan *htmlItem, htmlChannelBuffer)

	var records []Record
	var fetched atomic.Int64

	parserDone := make(chan struct{})
	go func() {
		defer close(parserDone)
		c.parserLoop(log, fr, tr, htmlCh, seedHost, &records)
	}()

	sem := make(chan struct{}, c.config.Fetchers)
	var wg sync.WaitGroup
	for i := 0; i < c.config.Fetchers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.fetcherLoop(ctx, log, fr, tr, htmlCh, seedHost, sem, &fetched)
		}()
	}

	// Quiescence: no queued URLs and no unparsed pages remain.
	tr.Wait()
	log.Info("queue quiescent")

	htmlCh <- nil
	<-parserDone

	fr.Finish()
	wg.Wait()

	log.Info("crawl complete",
		"pages_fetched", fetched.Load(),
		"products", len(records),
		"duration", time.Since(start).Round(time.Millisecond))

	return records, nil
}

// fetcherLoop pulls URLs from the frontier until it reports ErrFinished.
// Every popped entry retires exactly one tracker credit, on every path.
func (c *Crawler) fetcherLoop(
	ctx context.Context,
	log *slog.Logger,
	fr *frontier.Frontier,
	tr *tracker.Tracker,
	htmlCh chan<- *htmlItem,
	seedHost string,
	sem chan struct{},
	fetched *atomic.Int64,
) {
	for {
		pageURL, depth, err := fr.Next()
		if err != nil {
			return
		}

		// The frontier scopes admissions to the seed host already; this
		// re-check keeps the invariant even if an admission path regresses.
		if urlutil.Host(pageURL) != seedHost {
			tr.Done(1)
			continue
		}

		sem <- struct{}{}
		res, ferr := c.fetcher.Fetch(ctx, pageURL)
		<-sem

		if ferr == nil && res.Status == 200 && strings.TrimSpace(res.HTML) != "" {
			fetched.Add(1)
			// The unparsed page becomes outstanding work before the
			// frontier entry is retired; quiescence must not fire while
			// this worker still holds a live item.
			tr.Add(1)
			htmlCh <- &htmlItem{url: res.FinalURL, html: res.HTML, depth: depth}
			log.Info("fetched", "url", pageURL, "status", res.Status, "depth", depth)
		} else if ferr != nil {
			log.Warn("fetch failed", "url", pageURL, "error", ferr)
		} else {
			log.Warn("fetch returned no usable HTML", "url", pageURL, "status", res.Status)
		}

		tr.Done(1)
	}
}

// parserLoop drains the html channel until the sentinel arrives. Child
// URLs are queued before the consumed page is marked done, preserving
// the add-before-done ordering the tracker depends on.
func (c *Crawler) parserLoop(
	log *slog.Logger,
	fr *frontier.Frontier,
	tr *tracker.Tracker,
	htmlCh <-chan *htmlItem,
	seedHost string,
	records *[]Record,
) {
	for {
		item := <-htmlCh
		if item == nil {
			return
		}

		res, err := c.extractor.Extract(item.url, item.html, seedHost)
		if err != nil {
			log.Warn("parse failed", "url", item.url, "error", err)
			tr.Done(1)
			continue
		}

		queued := fr.Add(res.Children, item.depth)
		log.Info("parsed",
			"url", item.url,
			"depth", item.depth,
			"links", len(res.Children),
			"queued", queued,
			"products", len(res.Products))

		for _, productURL := range res.Products {
			if err := c.sink.Append(seedHost, productURL); err != nil {
				log.Error("failed to write product record", "url", productURL, "error", err)
			}
			*records = append(*records, Record{SeedDomain: seedHost, ProductURL: productURL})
		}

		tr.Done(1)
	}
}
