package preview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultFetchTimeout = 5 * time.Second
	defaultMaxBodySize  = 1 << 20 // 1 MiB
	defaultMaxRedirects = 3
	defaultUserAgent    = "Mozilla/5.0 (compatible; VibehuntrBot/1.0; +https://vibehuntr.app)"

	schemeHTTP  = "http"
	schemeHTTPS = "https"

	headerUserAgent = "User-Agent"
	headerAccept    = "Accept"
	acceptHTML      = "text/html,application/xhtml+xml"
)

// FetcherConfig holds the per-instance fetch limits. All fields are read-only
// after construction.
type FetcherConfig struct {
	Timeout         time.Duration
	MaxBodySize     int64
	MaxRedirects    int
	UserAgent       string
	ExcludedDomains []string
}

// Fetcher retrieves raw HTML for a URL while defending against SSRF,
// oversized responses, redirect loops, and hangs. It holds no mutable state;
// each fetch uses a fresh client.
type Fetcher struct {
	cfg    FetcherConfig
	logger *zerolog.Logger
}

func NewFetcher(cfg FetcherConfig, logger *zerolog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultFetchTimeout
	}

	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}

	if cfg.MaxRedirects <= 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	normalized := make([]string, 0, len(cfg.ExcludedDomains))
	for _, d := range cfg.ExcludedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			normalized = append(normalized, d)
		}
	}

	cfg.ExcludedDomains = normalized

	return &Fetcher{cfg: cfg, logger: logger}
}

// FetchHTML retrieves the HTML body of rawURL. Every failure wraps one of the
// sentinel errors in errors.go; the underlying transport error is never
// returned bare.
func (f *Fetcher) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	if !isValidURL(rawURL) {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	if f.shouldExclude(rawURL) {
		return "", fmt.Errorf("%w: %s", ErrExcludedURL, rawURL)
	}

	return f.fetch(ctx, rawURL)
}

// fetch performs the HTTP request without applying the exclusion policy.
func (f *Fetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	client := &http.Client{
		Timeout: f.cfg.Timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) > f.cfg.MaxRedirects {
				return ErrTooManyRedirects
			}

			return nil
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	req.Header.Set(headerUserAgent, f.cfg.UserAgent)
	req.Header.Set(headerAccept, acceptHTML)

	resp, err := client.Do(req)
	if err != nil {
		return "", f.classifyTransportError(err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}

	// The Content-Length header may be absent or wrong, so the body length is
	// re-checked after reading.
	if resp.ContentLength > f.cfg.MaxBodySize {
		return "", fmt.Errorf("%w: declared %d bytes, limit %d", ErrResponseTooLarge, resp.ContentLength, f.cfg.MaxBodySize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrConnectionFailed, err)
	}

	if int64(len(body)) > f.cfg.MaxBodySize {
		return "", fmt.Errorf("%w: body exceeds %d bytes", ErrResponseTooLarge, f.cfg.MaxBodySize)
	}

	return string(body), nil
}

func (f *Fetcher) classifyTransportError(err error) error {
	if errors.Is(err, ErrTooManyRedirects) {
		return fmt.Errorf("%w: more than %d redirects", ErrTooManyRedirects, f.cfg.MaxRedirects)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w after %s", ErrFetchTimeout, f.cfg.Timeout)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrFetchTimeout, f.cfg.Timeout)
	}

	return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
}

// isValidURL reports whether rawURL parses as an http or https URL with a
// non-empty host.
func isValidURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	return (u.Scheme == schemeHTTP || u.Scheme == schemeHTTPS) && u.Host != ""
}

// shouldExclude reports whether rawURL must not be fetched. It fails closed:
// any host that cannot be evaluated, and any panic during evaluation, counts
// as excluded.
func (f *Fetcher) shouldExclude(rawURL string) (excluded bool) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Warn().Str("url", rawURL).Interface("panic", r).Msg("exclusion check panicked, treating as excluded")

			excluded = true
		}
	}()

	lower := strings.ToLower(strings.TrimSpace(rawURL))
	if strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "blob:") {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return true
	}

	for _, d := range f.cfg.ExcludedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	if addr, err := netip.ParseAddr(host); err == nil {
		if addr.IsLoopback() || addr.IsPrivate() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
			return true
		}
	}

	return false
}
