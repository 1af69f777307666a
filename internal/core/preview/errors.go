package preview

import "errors"

// Fetch failure taxonomy. Every error returned by Fetcher.FetchHTML wraps
// exactly one of these sentinels, so callers can branch with errors.Is while
// the wrapped message stays suitable for user display.
var (
	// ErrInvalidURL indicates a URL that is not a well-formed http(s) URL.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrExcludedURL indicates a URL blocked by the exclusion policy.
	ErrExcludedURL = errors.New("URL is excluded from fetching")

	// ErrFetchTimeout indicates the request did not complete in time.
	ErrFetchTimeout = errors.New("request timed out")

	// ErrConnectionFailed indicates a transport-level failure.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrHTTPStatus indicates an HTTP error status code.
	ErrHTTPStatus = errors.New("HTTP error status")

	// ErrTooManyRedirects indicates the redirect limit was exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrResponseTooLarge indicates a response body over the size limit.
	ErrResponseTooLarge = errors.New("response too large")
)

// errorReason maps a fetch error to a stable label for metrics.
func errorReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, ErrExcludedURL):
		return "excluded"
	case errors.Is(err, ErrFetchTimeout):
		return "timeout"
	case errors.Is(err, ErrConnectionFailed):
		return "connection_failed"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrTooManyRedirects):
		return "too_many_redirects"
	case errors.Is(err, ErrResponseTooLarge):
		return "too_large"
	default:
		return "other"
	}
}
