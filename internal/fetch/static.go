package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/gocolly/colly/v2"
)

// Static issues a plain HTTP GET. Transport errors and timeouts are
// retried with exponential backoff; HTTP error statuses and non-HTML
// responses are not.
func (c *Client) Static(ctx context.Context, target string) (Result, error) {
	var result Result

	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		res, err := c.staticOnce(target)
		if err != nil {
			if errors.Is(err, ErrNonHTML) {
				result = res
				return backoff.Permanent(err)
			}
			slog.Debug("static fetch attempt failed", "url", target, "error", err)
			return err
		}
		result = res
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.BackoffInitial
	bo.MaxInterval = c.config.BackoffMax
	bo.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.WithContext(bo, ctx), c.config.MaxAttempts-1))
	if err != nil {
		if errors.Is(err, ErrNonHTML) {
			return result, err
		}
		return Result{FinalURL: target}, fmt.Errorf("request error: %w", err)
	}
	return result, nil
}

// staticOnce performs a single GET via colly. Redirects are followed and
// error statuses are parsed rather than surfaced as transport errors, so
// the caller can see the final status code.
func (c *Client) staticOnce(target string) (Result, error) {
	col := colly.NewCollector(
		colly.UserAgent(c.userAgent()),
		colly.ParseHTTPErrorResponse(),
		colly.AllowURLRevisit(),
	)

	col.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: c.config.ConnectTimeout,
		}).DialContext,
		ForceAttemptHTTP2: true,
	})

	// Connect timeout only; large pages may stream for as long as they
	// need.
	col.SetRequestTimeout(0)

	col.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
		r.Headers.Set("Connection", "keep-alive")
	})

	var result Result
	var fetchErr error

	col.OnResponse(func(r *colly.Response) {
		result.FinalURL = r.Request.URL.String()
		result.Status = r.StatusCode

		contentType := strings.ToLower(r.Headers.Get("Content-Type"))
		if !strings.Contains(contentType, "text/html") {
			fetchErr = fmt.Errorf("%w: %s", ErrNonHTML, contentType)
			return
		}
		result.HTML = string(r.Body)
	})

	col.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Request != nil {
			result.FinalURL = r.Request.URL.String()
			result.Status = r.StatusCode
		}
		fetchErr = err
	})

	if err := col.Visit(target); err != nil {
		return result, err
	}
	col.Wait()

	if fetchErr != nil {
		return result, fetchErr
	}
	return result, nil
}
