package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/0ne-nine9/arbitr/internal/cache"
	"github.com/0ne-nine9/arbitr/internal/model"
	"github.com/0ne-nine9/arbitr/internal/util"
)

var (
	// ErrExcludedDomain is returned for hosts that are never fetched
	ErrExcludedDomain = errors.New("excluded domain")
	// ErrDisallowedByRobots is returned when robots.txt forbids the fetch
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
	// ErrUnsupportedContent is returned for non-HTML responses
	ErrUnsupportedContent = errors.New("unsupported content type")
)

// fetchSleepFunc is swapped out by tests to skip backoff
var fetchSleepFunc = time.Sleep

const retryBackoff = time.Second

// StatusError reports a non-2xx response
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

// CrawlDelayer receives crawl delays announced in robots.txt
type CrawlDelayer interface {
	ApplyCrawlDelay(rawURL string, delay time.Duration)
}

// FetcherOptions configures a Fetcher. Zero values disable the optional
// collaborators.
type FetcherOptions struct {
	Client          *http.Client
	UserAgent       string
	MaxBytes        int64
	MaxRetries      int
	ExcludedDomains []string
	Robots          *util.RobotsChecker
	Cache           cache.Cache
	CacheTTL        time.Duration
	CrawlDelayer    CrawlDelayer
	Logger          *zap.Logger
}

// Fetcher fetches article pages
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxRetries int
	excluded   []string
	robots     *util.RobotsChecker
	cache      cache.Cache
	cacheTTL   time.Duration
	delayer    CrawlDelayer
	logger     *zap.Logger
}

// NewFetcher creates a fetcher with a plain client and no cache or robots
// checks
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64) *Fetcher {
	client, _ := util.NewHTTPClient(util.ClientOptions{Timeout: timeout})
	return NewFetcherWithOptions(FetcherOptions{
		Client:     client,
		UserAgent:  userAgent,
		MaxBytes:   maxBytes,
		MaxRetries: 2,
	})
}

// NewFetcherWithOptions creates a fetcher from opts
func NewFetcherWithOptions(opts FetcherOptions) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 5_000_000
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	excluded := make([]string, 0, len(opts.ExcludedDomains))
	for _, d := range opts.ExcludedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			excluded = append(excluded, d)
		}
	}

	return &Fetcher{
		httpClient: client,
		userAgent:  opts.UserAgent,
		maxBytes:   maxBytes,
		maxRetries: max(opts.MaxRetries, 0),
		excluded:   excluded,
		robots:     opts.Robots,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		delayer:    opts.CrawlDelayer,
		logger:     logger,
	}
}

// FetchResult contains the fetched HTML and metadata
type FetchResult struct {
	HTML     string
	Meta     model.FetchMeta
	FinalURL string
}

// IsExcluded reports whether rawURL's host is an excluded domain or a
// subdomain of one
func (f *Fetcher) IsExcluded(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, d := range f.excluded {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Get returns the page for rawURL from the cache when possible, otherwise
// checks robots.txt and fetches it with retries
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.IsExcluded(rawURL) {
		return nil, fmt.Errorf("%w: %s", ErrExcludedDomain, rawURL)
	}

	if f.cache != nil {
		if page, ok := cache.GetPage(f.cache, rawURL); ok {
			f.logger.Debug("page cache hit", zap.String("url", rawURL))
			return fromPage(page, true), nil
		}
	}

	if f.robots != nil {
		allowed, delay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots: %w", err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrDisallowedByRobots, rawURL)
		}
		if delay > 0 && f.delayer != nil {
			f.delayer.ApplyCrawlDelay(rawURL, delay)
		}
	}

	result, err := f.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		page := &cache.Page{
			URL:          rawURL,
			FinalURL:     result.FinalURL,
			HTML:         result.HTML,
			StatusCode:   result.Meta.StatusCode,
			ContentType:  result.Meta.ContentType,
			LastModified: result.Meta.LastModified,
			ETag:         result.Meta.ETag,
			FetchedAt:    time.Now().UTC(),
		}
		if err := cache.PutPage(f.cache, page, f.cacheTTL); err != nil {
			f.logger.Warn("page cache write failed", zap.String("url", rawURL), zap.Error(err))
		}
	}

	return result, nil
}

func fromPage(page *cache.Page, fromCache bool) *FetchResult {
	return &FetchResult{
		HTML:     page.HTML,
		FinalURL: page.FinalURL,
		Meta: model.FetchMeta{
			StatusCode:   page.StatusCode,
			ContentType:  page.ContentType,
			LastModified: page.LastModified,
			ETag:         page.ETag,
			FromCache:    fromCache,
		},
	}
}

// FetchWithRetry fetches rawURL, retrying 429, 5xx and transport errors
// with linear backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			f.logger.Debug("retrying fetch",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
			fetchSleepFunc(time.Duration(attempt) * retryBackoff)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		result, err := f.Fetch(ctx, rawURL)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil || !isRetryableFetchError(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

// Fetch retrieves HTML content from the given URL once
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if !isHTMLContent(meta.ContentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedContent, meta.ContentType)
	}

	reader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBytes), meta.ContentType)
	if err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		HTML:     string(body),
		Meta:     meta,
		FinalURL: resp.Request.URL.String(),
	}, nil
}

func isHTMLContent(contentType string) bool {
	if contentType == "" {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "html") || strings.Contains(ct, "xml") || strings.HasPrefix(ct, "text/")
}

// isRetryableFetchError reports whether a fetch error is worth retrying:
// 429, any 5xx, or a transport failure
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return retryableStatus(statusErr.Code)
	}

	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, "unexpected status: "); ok {
		code, convErr := strconv.Atoi(strings.SplitN(rest, " ", 2)[0])
		return convErr == nil && retryableStatus(code)
	}
	return strings.HasPrefix(msg, "fetch: ")
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
