// Package calendar pulls external ICS feeds into the event store.
//
// Feeds are fetched over HTTP with conditional requests, parsed,
// recurring events are expanded within the sync window, and the result
// is merged into the repository by remote id. A built-in mock feed
// stands in when no sources are configured.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/quietweek/quietweek/pkg/logger"
)

const fetchTimeout = 15 * time.Second

// Source represents a single ICS subscription source.
type Source struct {
	// ID is an internal identifier for logging and status reporting.
	ID string
	// URL is the ICS endpoint.
	URL string
}

// FetchResult contains the outcome of fetching a single ICS source.
type FetchResult struct {
	Source    Source
	Body      []byte
	FromCache bool
}

// cacheEntry holds conditional-request state for one URL.
type cacheEntry struct {
	etag         string
	lastModified string
	body         []byte
}

// Fetcher fetches ICS feeds, reusing ETag / Last-Modified validators so
// unchanged feeds cost a 304 instead of a full download.
type Fetcher struct {
	client *http.Client
	mu     sync.Mutex
	cache  map[string]*cacheEntry
	log    logger.Logger
}

// NewFetcher creates a new ICS fetcher.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  make(map[string]*cacheEntry),
		log:    logger.Named("calendar"),
	}
}

// FetchAll fetches all given sources. The returned slice only contains
// entries that produced a body; per-source failures are collected in
// the error slice so one broken feed does not block the rest.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) ([]FetchResult, []error) {
	results := make([]FetchResult, 0, len(sources))
	var errs []error

	for _, src := range sources {
		res, err := f.FetchOne(ctx, src)
		if err != nil {
			errs = append(errs, fmt.Errorf("fetch %s: %w", src.ID, err))
			f.log.Error(ctx, "ics fetch failed",
				logger.String("id", src.ID),
				logger.String("url", redactURL(src.URL)),
				logger.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// FetchOne fetches a single ICS source, honoring ETag and Last-Modified.
func (f *Fetcher) FetchOne(ctx context.Context, src Source) (FetchResult, error) {
	if src.URL == "" {
		return FetchResult{}, errors.New("source URL is empty")
	}

	f.mu.Lock()
	cached := f.cache[src.URL]
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return FetchResult{}, err
	}
	if cached != nil {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		// Network error; fall back to the cached body when we have one.
		if cached != nil && len(cached.body) > 0 {
			f.log.Warn(ctx, "ics fetch network error, using cached body",
				logger.String("id", src.ID), logger.Error(err))
			return FetchResult{Source: src, Body: cached.body, FromCache: true}, nil
		}
		return FetchResult{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return FetchResult{}, readErr
		}
		f.mu.Lock()
		f.cache[src.URL] = &cacheEntry{
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			body:         body,
		}
		f.mu.Unlock()
		return FetchResult{Source: src, Body: body}, nil

	case http.StatusNotModified:
		if cached == nil || len(cached.body) == 0 {
			return FetchResult{}, errors.New("received 304 Not Modified but no cached body available")
		}
		return FetchResult{Source: src, Body: cached.body, FromCache: true}, nil

	default:
		if cached != nil && len(cached.body) > 0 {
			f.log.Warn(ctx, "ics fetch non-OK, using cached body",
				logger.String("id", src.ID),
				logger.Int("status", resp.StatusCode))
			return FetchResult{Source: src, Body: cached.body, FromCache: true}, nil
		}
		return FetchResult{}, errors.New(resp.Status)
	}
}

// redactURL hides query strings and paths of feed URLs in logs; private
// ICS links routinely embed access tokens.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://")
	if i == -1 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	j := strings.IndexByte(rest, '/')
	if j == -1 {
		return u + redactedSuffix
	}
	return u[:i+3+j] + redactedSuffix
}
