// Package preview implements the link-preview pipeline: fetching HTML for a
// URL, extracting Open Graph / Twitter Card / standard metadata, and caching
// the result under a TTL and capacity bound.
package preview

import (
	"net/url"
	"strings"
)

// LinkMetadata is the result of processing a single URL. When a fetch or
// parse fails, Error carries a human-readable reason and Domain is still
// populated so clients can render a fallback chip.
type LinkMetadata struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Favicon     string `json:"favicon,omitempty"`
	Domain      string `json:"domain"`
	Error       string `json:"error,omitempty"`
}

// ExtractDomain returns the host (with port, if present) of rawURL.
// An unparseable URL yields the raw string itself so the result is never empty.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	return strings.ToLower(u.Host)
}
