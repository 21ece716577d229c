// Package fetch retrieves page HTML with a two-stage fallback: a cheap
// static HTTP fetch first, then a headless-browser render for pages the
// static fetch cannot get a usable body from. The cheap-first discipline
// is the point — the browser is the expensive last resort.
package fetch

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"
)

// Mode selects the fetch strategy.
type Mode string

const (
	ModeSmart   Mode = "smart"   // static first, browser fallback
	ModeStatic  Mode = "static"  // static HTTP only
	ModeBrowser Mode = "browser" // headless browser only
)

// ErrNonHTML marks responses whose content type is not text/html. These
// are never retried and never fall back to the browser.
var ErrNonHTML = errors.New("non-HTML content")

// Result is the outcome of one fetch. Status 0 means the request never
// produced an HTTP response.
type Result struct {
	FinalURL string // post-redirect URL
	Status   int
	HTML     string
}

// Browser sessions share the static fetch's User-Agent pool.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/114.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/112.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Firefox/113.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36",
}

// Config holds fetcher settings.
type Config struct {
	Mode            Mode
	ConnectTimeout  time.Duration // static dial timeout; no overall response deadline
	PageLoadTimeout time.Duration // browser navigation budget
	DOMReadyTimeout time.Duration // browser wait for <body>
	MaxAttempts     uint64        // static attempts, transport errors only
	BackoffInitial  time.Duration
	BackoffMax      time.Duration
	UserAgents      []string
}

// DefaultConfig returns the standard fetch settings.
func DefaultConfig() Config {
	return Config{
		Mode:            ModeSmart,
		ConnectTimeout:  5 * time.Second,
		PageLoadTimeout: 20 * time.Second,
		DOMReadyTimeout: 15 * time.Second,
		MaxAttempts:     3,
		BackoffInitial:  time.Second,
		BackoffMax:      10 * time.Second,
		UserAgents:      defaultUserAgents,
	}
}

// Client fetches pages according to its configured mode.
type Client struct {
	config    Config
	browserFn func(ctx context.Context, url string) (Result, error)
}

// NewClient creates a fetch client.
func NewClient(cfg Config) *Client {
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = defaultUserAgents
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	c := &Client{config: cfg}
	c.browserFn = c.renderBrowser
	return c
}

// Fetch retrieves a URL using the configured mode.
func (c *Client) Fetch(ctx context.Context, url string) (Result, error) {
	switch c.config.Mode {
	case ModeStatic:
		return c.Static(ctx, url)
	case ModeBrowser:
		return c.Browser(ctx, url)
	default:
		return c.Smart(ctx, url)
	}
}

// Smart runs the static fetch and returns its result when it produced a
// 200 with a non-empty body; anything else falls back to the browser.
func (c *Client) Smart(ctx context.Context, url string) (Result, error) {
	res, err := c.Static(ctx, url)
	if err == nil && res.Status == 200 && strings.TrimSpace(res.HTML) != "" {
		return res, nil
	}
	if errors.Is(err, ErrNonHTML) {
		return res, err
	}
	return c.Browser(ctx, url)
}

// Browser renders the page in a headless browser.
func (c *Client) Browser(ctx context.Context, url string) (Result, error) {
	return c.browserFn(ctx, url)
}

func (c *Client) userAgent() string {
	return c.config.UserAgents[rand.IntN(len(c.config.UserAgents))]
}
