// Package urlutil provides URL normalization shared by the frontier and
// the link extractor.
package urlutil

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes a URL for deduplication: lowercase scheme and
// host, fragment removed, trailing slash stripped. The query string is
// kept as-is. Returns "" for unparseable input.
func Normalize(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	if len(parsed.Path) > 1 && parsed.Path[len(parsed.Path)-1] == '/' {
		parsed.Path = parsed.Path[:len(parsed.Path)-1]
	}

	return parsed.String()
}

// Host returns the lowercased host of a URL, or "" if it cannot be parsed.
func Host(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Host)
}
