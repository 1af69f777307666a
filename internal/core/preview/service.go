package preview

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultMaxConcurrent = 4

	logKeyURL = "url"
)

// HTMLFetcher retrieves raw HTML for a URL. *Fetcher is the production
// implementation.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, rawURL string) (string, error)
}

// Service orchestrates the preview pipeline for batches of URLs. Each URL is
// processed independently: a fetch failure is captured in that URL's result
// and never aborts its siblings.
type Service struct {
	fetcher       HTMLFetcher
	cache         *Cache
	logger        *zerolog.Logger
	maxConcurrent int
}

func NewService(fetcher HTMLFetcher, cache *Cache, logger *zerolog.Logger, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	return &Service{
		fetcher:       fetcher,
		cache:         cache,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// GetLinkPreviews returns one result per input URL, in input order. URLs are
// fetched concurrently under a bounded semaphore; completion order does not
// affect output order.
func (s *Service) GetLinkPreviews(ctx context.Context, urls []string) []*LinkMetadata {
	results := make([]*LinkMetadata, len(urls))

	sem := make(chan struct{}, s.maxConcurrent)

	var wg sync.WaitGroup

	for i, rawURL := range urls {
		wg.Add(1)

		go func(i int, rawURL string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = s.previewOne(ctx, rawURL)
		}(i, rawURL)
	}

	wg.Wait()

	return results
}

func (s *Service) previewOne(ctx context.Context, rawURL string) *LinkMetadata {
	if cached := s.cacheGet(rawURL); cached != nil {
		PreviewsTotal.WithLabelValues(OutcomeCached).Inc()

		return cached
	}

	start := time.Now()

	htmlText, err := s.fetcher.FetchHTML(ctx, rawURL)
	if err != nil {
		s.logger.Debug().Err(err).Str(logKeyURL, rawURL).Msg("fetch failed")
		PreviewsTotal.WithLabelValues(OutcomeError).Inc()
		FetchErrorsTotal.WithLabelValues(errorReason(err)).Inc()

		return &LinkMetadata{
			URL:    rawURL,
			Domain: ExtractDomain(rawURL),
			Error:  err.Error(),
		}
	}

	meta := ParseMetadata(htmlText, rawURL)

	FetchDuration.Observe(time.Since(start).Seconds())
	PreviewsTotal.WithLabelValues(OutcomeFetched).Inc()

	// Failed fetches are deliberately not cached; see DESIGN.md.
	s.cacheSet(rawURL, meta)

	return meta
}

// cacheGet treats any cache problem, including an absent cache, as a miss so
// a cache failure never blocks serving fresh data.
func (s *Service) cacheGet(rawURL string) *LinkMetadata {
	if s.cache == nil {
		return nil
	}

	return s.cache.Get(rawURL)
}

func (s *Service) cacheSet(rawURL string, meta *LinkMetadata) {
	if s.cache == nil {
		return
	}

	s.cache.Set(rawURL, meta)
}
