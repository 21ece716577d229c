// Package frontier manages the prioritized queue of URLs discovered but
// not yet fetched. One frontier lives for one seed: it is created empty,
// seeded, drained, and discarded. URL-pattern-identified products dequeue
// before exploratory links so yield stays high under a fixed budget.
package frontier

import (
	"container/heap"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/jmylchreest/prodcrawl/internal/analyzer"
	"github.com/jmylchreest/prodcrawl/internal/tracker"
	"github.com/jmylchreest/prodcrawl/internal/urlutil"
)

// ErrFinished signals consumers that the frontier is drained and no
// producer will add more URLs. Callers treat it as loop exit.
var ErrFinished = errors.New("frontier: no more work")

// Priority buckets for Score. Lower dequeues first.
const (
	priorityStrongProduct = 1
	priorityLikelyProduct = 3
	priorityDefault       = 10
	priorityDeadEnd       = 100
)

// Frontier is a thread-safe priority queue with deduplication, a depth
// bound, and same-origin scoping.
type Frontier struct {
	mu   sync.Mutex
	cond *sync.Cond

	queue   itemHeap
	visited map[string]struct{}

	allowedHost string
	maxDepth    int
	active      bool
	seq         int

	analyzer *analyzer.Analyzer
	tracker  *tracker.Tracker
}

type item struct {
	priority int
	seq      int // insertion order, breaks priority ties
	url      string
	depth    int
}

// New creates a frontier scoped to the seed URL's host.
func New(seedURL string, an *analyzer.Analyzer, tr *tracker.Tracker, maxDepth int) (*Frontier, error) {
	parsed, err := url.Parse(seedURL)
	if err != nil {
		return nil, err
	}
	if parsed.Host == "" {
		return nil, errors.New("frontier: seed URL has no host")
	}

	f := &Frontier{
		visited:     make(map[string]struct{}),
		allowedHost: strings.ToLower(parsed.Host),
		maxDepth:    maxDepth,
		active:      true,
		analyzer:    an,
		tracker:     tr,
	}
	f.cond = sync.NewCond(&f.mu)
	return f, nil
}

// Host returns the allowed host for this frontier.
func (f *Frontier) Host() string {
	return f.allowedHost
}

// Add admits URLs at currentDepth+1. A URL is skipped if already seen,
// over the depth limit, off-host, or not http(s). Each admitted URL adds
// one unit of outstanding work to the tracker. Returns the number of URLs
// actually admitted.
func (f *Frontier) Add(urls []string, currentDepth int) int {
	depth := currentDepth + 1

	f.mu.Lock()
	added := 0
	for _, rawURL := range urls {
		normalized := urlutil.Normalize(rawURL)
		if normalized == "" {
			continue
		}
		if _, dup := f.visited[normalized]; dup {
			continue
		}
		if depth > f.maxDepth {
			continue
		}

		parsed, err := url.Parse(normalized)
		if err != nil {
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		if parsed.Host != f.allowedHost {
			continue
		}

		f.visited[normalized] = struct{}{}
		f.seq++
		heap.Push(&f.queue, item{
			priority: f.Score(normalized),
			seq:      f.seq,
			url:      normalized,
			depth:    depth,
		})
		added++
	}
	if added > 0 {
		// Publish the new work to the tracker before any consumer can pop
		// it, otherwise a fast pop-and-done could drive the count negative.
		f.tracker.Add(added)
		f.active = true
		f.cond.Broadcast()
	}
	f.mu.Unlock()

	return added
}

// Next blocks until a URL is available or the frontier is finished.
// Returns ErrFinished once the queue is empty and no producer remains.
func (f *Frontier) Next() (string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for f.queue.Len() == 0 {
		if !f.active {
			return "", 0, ErrFinished
		}
		f.cond.Wait()
	}

	it := heap.Pop(&f.queue).(item)
	return it.url, it.depth, nil
}

// Finish marks the frontier inactive and releases all blocked consumers.
func (f *Frontier) Finish() {
	f.mu.Lock()
	f.active = false
	f.cond.Broadcast()
	f.mu.Unlock()
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

// Score maps a URL to its priority bucket. Dead-end URLs are still
// admitted — link extraction already filters them, so any that reach the
// frontier are deferred behind everything else rather than dropped.
func (f *Frontier) Score(rawURL string) int {
	verdict := f.analyzer.Classify(rawURL)

	if verdict.IsProduct && verdict.Score > 1 {
		return priorityStrongProduct
	}
	if verdict.IsProduct && verdict.Score >= 0 {
		return priorityLikelyProduct
	}
	if f.analyzer.IsDeadEnd(rawURL) {
		return priorityDeadEnd
	}
	return priorityDefault
}

// itemHeap is a min-heap ordered by priority, then insertion order.
type itemHeap []item

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *itemHeap) Push(x any) { *h = append(*h, x.(item)) }

func (h *itemHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	*h = old[:n-1]
	return it
}
