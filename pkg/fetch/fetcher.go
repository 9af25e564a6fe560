package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/msys2/msys2-web/pkg/storage"
)

// A Fetcher retrieves upstream payloads over HTTP with retries.  With
// a cache store attached, payloads are served from the cache keyed by
// URL, which is a development aid to avoid hammering the mirrors.
type Fetcher struct {
	l       hclog.Logger
	client  *retryablehttp.Client
	cache   storage.Storage
	timeout time.Duration
}

// NewFetcher sets up the HTTP client.  cache may be nil.
func NewFetcher(l hclog.Logger, cache storage.Storage) *Fetcher {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &Fetcher{
		l:       l.Named("fetch"),
		client:  client,
		cache:   cache,
		timeout: time.Minute,
	}
}

// Get retrieves one URL.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	if f.cache != nil {
		if data, err := f.cache.Get([]byte(url)); err == nil && data != nil {
			f.l.Debug("cache hit", "url", url)
			return data, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	if f.cache != nil {
		if err := f.cache.Put([]byte(url), data); err != nil {
			f.l.Warn("failed to cache payload", "url", url, "error", err)
		}
	}
	return data, nil
}
