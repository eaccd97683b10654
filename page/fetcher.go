package page

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/seo-optimizer/contentscore/analyzer"
)

const (
	defaultUserAgent    = "ContentScore/1.0 (+https://github.com/seo-optimizer/contentscore)"
	defaultMaxBodyBytes = 5 << 20
)

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid page url")
	// ErrTooLarge is returned when the page exceeds the body size limit.
	ErrTooLarge = errors.New("page exceeds size limit")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Recorder receives fetch cache counters; *stats.Storage satisfies it.
type Recorder interface {
	IncrementFetch(hits, misses, errors int)
}

// Observer receives one result per fetch: "hit", "miss" or "error".
type Observer interface {
	ObserveFetch(result string)
}

// Options configures a Fetcher. Zero values take defaults.
type Options struct {
	Timeout         time.Duration
	CacheTTL        time.Duration
	MaxCacheSize    int
	CleanupInterval time.Duration
	MaxBodyBytes    int64
	UserAgent       string
	Client          *http.Client
	Stats           Recorder
	Metrics         Observer
}

// Cache entry with expiration
type cacheEntry struct {
	snapshot  analyzer.ContentSnapshot
	timestamp time.Time
}

// CacheStats describes the fetch cache
type CacheStats struct {
	Entries int           `json:"entries"`
	TTL     time.Duration `json:"ttl"`
	MaxSize int           `json:"maxSize"`
}

// Fetcher downloads pages and converts them to snapshots, caching the result
// per URL.
type Fetcher struct {
	client          *http.Client
	userAgent       string
	maxBodyBytes    int64
	cache           map[string]cacheEntry
	cacheMutex      sync.RWMutex
	cacheTTL        time.Duration
	maxCacheSize    int
	cleanupInterval time.Duration
	stats           Recorder
	metrics         Observer
	now             func() time.Time
	stop            chan struct{}
	stopOnce        sync.Once
}

// NewFetcher creates a Fetcher and starts its cache cleanup loop. Call Close
// to stop it.
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Minute
	}
	if opts.MaxCacheSize <= 0 {
		opts.MaxCacheSize = 1000
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 5 * time.Minute
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Client == nil {
		opts.Client = &http.Client{
			Timeout: opts.Timeout,
			Transport: otelhttp.NewTransport(&http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			}),
		}
	}

	f := &Fetcher{
		client:          opts.Client,
		userAgent:       opts.UserAgent,
		maxBodyBytes:    opts.MaxBodyBytes,
		cache:           make(map[string]cacheEntry),
		cacheTTL:        opts.CacheTTL,
		maxCacheSize:    opts.MaxCacheSize,
		cleanupInterval: opts.CleanupInterval,
		stats:           opts.Stats,
		metrics:         opts.Metrics,
		now:             time.Now,
		stop:            make(chan struct{}),
	}

	go f.periodicCleanup()

	return f
}

// Close stops the cleanup loop.
func (f *Fetcher) Close() {
	f.stopOnce.Do(func() { close(f.stop) })
}

func (f *Fetcher) periodicCleanup() {
	ticker := time.NewTicker(f.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.cleanup()
		case <-f.stop:
			return
		}
	}
}

// cleanup removes expired entries and enforces the size limit, oldest first
func (f *Fetcher) cleanup() {
	now := f.now()

	f.cacheMutex.Lock()
	defer f.cacheMutex.Unlock()

	for key, entry := range f.cache {
		if now.Sub(entry.timestamp) > f.cacheTTL {
			delete(f.cache, key)
		}
	}

	if len(f.cache) <= f.maxCacheSize {
		return
	}

	type aged struct {
		key       string
		timestamp time.Time
	}
	entries := make([]aged, 0, len(f.cache))
	for key, entry := range f.cache {
		entries = append(entries, aged{key, entry.timestamp})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].timestamp.Before(entries[j].timestamp)
	})
	for i := 0; i < len(entries)-f.maxCacheSize; i++ {
		delete(f.cache, entries[i].key)
	}
}

// generateCacheKey creates a unique key for the URL
func generateCacheKey(url string) string {
	hash := md5.Sum([]byte(url))
	return hex.EncodeToString(hash[:])
}

// ClearCache clears the page cache
func (f *Fetcher) ClearCache() {
	f.cacheMutex.Lock()
	defer f.cacheMutex.Unlock()
	f.cache = make(map[string]cacheEntry)
}

// GetCacheStats returns statistics about the cache
func (f *Fetcher) GetCacheStats() CacheStats {
	f.cacheMutex.RLock()
	defer f.cacheMutex.RUnlock()

	return CacheStats{
		Entries: len(f.cache),
		TTL:     f.cacheTTL,
		MaxSize: f.maxCacheSize,
	}
}

// IsCached checks if a URL is in the cache and not expired
func (f *Fetcher) IsCached(pageURL string) bool {
	_, ok := f.cached(generateCacheKey(pageURL))
	return ok
}

func (f *Fetcher) cached(key string) (analyzer.ContentSnapshot, bool) {
	f.cacheMutex.RLock()
	defer f.cacheMutex.RUnlock()

	entry, found := f.cache[key]
	if found && f.now().Sub(entry.timestamp) < f.cacheTTL {
		return entry.snapshot, true
	}
	return analyzer.ContentSnapshot{}, false
}

func (f *Fetcher) record(result string) {
	if f.stats != nil {
		switch result {
		case "hit":
			f.stats.IncrementFetch(1, 0, 0)
		case "miss":
			f.stats.IncrementFetch(0, 1, 0)
		case "error":
			f.stats.IncrementFetch(0, 0, 1)
		}
	}
	if f.metrics != nil {
		f.metrics.ObserveFetch(result)
	}
}

// Fetch returns the snapshot of the page at pageURL, from cache when fresh.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (analyzer.ContentSnapshot, error) {
	ctx, span := otel.Tracer("github.com/seo-optimizer/contentscore/page").Start(ctx, "page.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("page.url", pageURL))

	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		span.SetStatus(codes.Error, "invalid url")
		return analyzer.ContentSnapshot{}, fmt.Errorf("%w: %q", ErrInvalidURL, pageURL)
	}

	key := generateCacheKey(pageURL)
	if snap, ok := f.cached(key); ok {
		f.record("hit")
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return snap, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	snap, err := f.download(ctx, pageURL)
	if err != nil {
		f.record("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return analyzer.ContentSnapshot{}, err
	}
	f.record("miss")

	f.cacheMutex.Lock()
	f.cache[key] = cacheEntry{snapshot: snap, timestamp: f.now()}
	full := len(f.cache) > f.maxCacheSize
	f.cacheMutex.Unlock()

	if full {
		f.cleanup()
	}

	return snap, nil
}

func (f *Fetcher) download(ctx context.Context, pageURL string) (analyzer.ContentSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return analyzer.ContentSnapshot{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return analyzer.ContentSnapshot{}, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return analyzer.ContentSnapshot{}, &StatusError{StatusCode: resp.StatusCode}
	}

	buf := new(bytes.Buffer)
	n, err := io.Copy(buf, io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return analyzer.ContentSnapshot{}, fmt.Errorf("read %s: %w", pageURL, err)
	}
	if n > f.maxBodyBytes {
		return analyzer.ContentSnapshot{}, ErrTooLarge
	}

	return Extract(buf.Bytes(), resp.Header.Get("Content-Type"), pageURL)
}
