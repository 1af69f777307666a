package preview

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// stubFetcher serves canned HTML per URL and records call counts.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		pages: make(map[string]string),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (s *stubFetcher) FetchHTML(_ context.Context, rawURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[rawURL]++

	if err, ok := s.errs[rawURL]; ok {
		return "", err
	}

	return s.pages[rawURL], nil
}

func (s *stubFetcher) callCount(rawURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[rawURL]
}

func TestGetLinkPreviewsBatchIndependence(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.pages["https://example.com"] = "<html><head><title>Test Page</title></head></html>"
	fetcher.errs["http://localhost"] = fmt.Errorf("%w: http://localhost", ErrExcludedURL)

	cache := newTestCache(t, time.Minute, 10)
	svc := NewService(fetcher, cache, nil, 2)

	results := svc.GetLinkPreviews(context.Background(), []string{"https://example.com", "http://localhost"})

	require.Len(t, results, 2)

	require.Empty(t, results[0].Error)
	require.Equal(t, "Test Page", results[0].Title)
	require.Equal(t, "example.com", results[0].Domain)

	require.NotEmpty(t, results[1].Error)
	require.Equal(t, "localhost", results[1].Domain)
	require.Empty(t, results[1].Title)
}

func TestGetLinkPreviewsPreservesInputOrder(t *testing.T) {
	fetcher := newStubFetcher()

	var urls []string

	for i := 0; i < 20; i++ {
		u := fmt.Sprintf("https://example.com/%d", i)
		urls = append(urls, u)
		fetcher.pages[u] = fmt.Sprintf("<html><head><title>Page %d</title></head></html>", i)
	}

	svc := NewService(fetcher, newTestCache(t, time.Minute, 100), nil, 5)

	results := svc.GetLinkPreviews(context.Background(), urls)

	require.Len(t, results, len(urls))

	for i, res := range results {
		require.Equal(t, urls[i], res.URL)
		require.Equal(t, fmt.Sprintf("Page %d", i), res.Title)
	}
}

func TestGetLinkPreviewsUsesCache(t *testing.T) {
	const url = "https://example.com"

	fetcher := newStubFetcher()
	fetcher.pages[url] = "<html><head><title>Test Page</title></head></html>"

	svc := NewService(fetcher, newTestCache(t, time.Minute, 10), nil, 2)

	first := svc.GetLinkPreviews(context.Background(), []string{url})
	second := svc.GetLinkPreviews(context.Background(), []string{url})

	require.Equal(t, first[0].Title, second[0].Title)
	require.Equal(t, 1, fetcher.callCount(url), "second request should be served from cache")
}

func TestGetLinkPreviewsDoesNotCacheFailures(t *testing.T) {
	const url = "https://example.com/flaky"

	fetcher := newStubFetcher()
	fetcher.errs[url] = fmt.Errorf("%w after 5s", ErrFetchTimeout)

	cache := newTestCache(t, time.Minute, 10)
	svc := NewService(fetcher, cache, nil, 2)

	results := svc.GetLinkPreviews(context.Background(), []string{url})
	require.NotEmpty(t, results[0].Error)
	require.Zero(t, cache.Len())

	// A later attempt fetches again instead of replaying the failure.
	svc.GetLinkPreviews(context.Background(), []string{url})
	require.Equal(t, 2, fetcher.callCount(url))
}

func TestGetLinkPreviewsNilCache(t *testing.T) {
	const url = "https://example.com"

	fetcher := newStubFetcher()
	fetcher.pages[url] = "<html><head><title>Test Page</title></head></html>"

	svc := NewService(fetcher, nil, nil, 2)

	results := svc.GetLinkPreviews(context.Background(), []string{url})
	require.Equal(t, "Test Page", results[0].Title)
}

func TestGetLinkPreviewsEmptyBatch(t *testing.T) {
	svc := NewService(newStubFetcher(), newTestCache(t, time.Minute, 10), nil, 2)

	require.Empty(t, svc.GetLinkPreviews(context.Background(), nil))
}
