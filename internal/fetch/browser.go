package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chromedp/chromedp"
)

// renderBrowser fetches a page with a short-lived headless browser. The
// browser is launched and torn down within the call; nothing is retried.
func (c *Client) renderBrowser(ctx context.Context, target string) (Result, error) {
	slog.Debug("browser fetch starting", "url", target)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(c.userAgent()),
		chromedp.WindowSize(1920, 1080),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	navCtx, cancelNav := context.WithTimeout(browserCtx, c.config.PageLoadTimeout)
	defer cancelNav()

	if err := chromedp.Run(navCtx, chromedp.Navigate(target)); err != nil {
		return Result{FinalURL: target}, fmt.Errorf("browser navigation failed: %w", err)
	}

	readyCtx, cancelReady := context.WithTimeout(browserCtx, c.config.DOMReadyTimeout)
	defer cancelReady()

	var html string
	err := chromedp.Run(readyCtx,
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return Result{FinalURL: target}, fmt.Errorf("browser capture failed: %w", err)
	}

	slog.Debug("browser fetch complete", "url", target, "html_size", len(html))
	return Result{FinalURL: target, Status: 200, HTML: html}, nil
}
