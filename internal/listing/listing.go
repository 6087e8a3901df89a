// Package listing loads search listings (JSON, JSONL, RSS/Atom feeds and
// plain URL lists) into articles ready for enrichment.
package listing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/0ne-nine9/arbitr/internal/dates"
	"github.com/0ne-nine9/arbitr/internal/model"
)

// ErrUnsupportedFormat is returned when a source's format cannot be determined
var ErrUnsupportedFormat = errors.New("unsupported listing format")

// Format names a listing encoding
type Format string

const (
	FormatAuto  Format = ""
	FormatJSON  Format = "json"  // array of entries or a results document
	FormatJSONL Format = "jsonl" // one entry per line
	FormatFeed  Format = "feed"  // RSS or Atom
	FormatURLs  Format = "urls"  // one URL per line, # comments
)

// ParseFormat maps a flag value to a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatJSON, FormatJSONL, FormatFeed, FormatURLs:
		return f, nil
	case "auto":
		return FormatAuto, nil
	case "rss", "atom", "xml":
		return FormatFeed, nil
	case "ndjson":
		return FormatJSONL, nil
	case "txt", "text":
		return FormatURLs, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// maxListingBytes bounds a remote listing download
const maxListingBytes = 20 << 20

// Loader reads listings from files or URLs
type Loader struct {
	client     *http.Client
	userAgent  string
	normalizer *dates.Normalizer
	format     Format
	now        func() time.Time
	maxWorkers int
}

// Option configures a Loader
type Option func(*Loader)

// WithFormat forces a format instead of detecting it per source
func WithFormat(f Format) Option {
	return func(l *Loader) { l.format = f }
}

// WithNow sets the reference time for relative listing dates
func WithNow(now func() time.Time) Option {
	return func(l *Loader) { l.now = now }
}

// WithHTTPClient sets the client used for remote sources
func WithHTTPClient(client *http.Client, userAgent string) Option {
	return func(l *Loader) {
		l.client = client
		l.userAgent = userAgent
	}
}

// NewLoader creates a loader that normalizes listing dates with normalizer
func NewLoader(normalizer *dates.Normalizer, opts ...Option) *Loader {
	l := &Loader{
		client:     &http.Client{Timeout: 30 * time.Second},
		userAgent:  "arbitr",
		normalizer: normalizer,
		now:        time.Now,
		maxWorkers: 4,
	}
	if l.normalizer == nil {
		l.normalizer = dates.NewNormalizer(dates.WithFuzzyParser(dates.DateParser{}))
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll loads every source concurrently and returns their articles in
// source order with duplicate URLs removed (first wins) and IDs assigned
func (l *Loader) LoadAll(ctx context.Context, sources []string) ([]model.Article, error) {
	perSource := make([][]model.Article, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.maxWorkers)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			articles, err := l.Load(ctx, src)
			if err != nil {
				return fmt.Errorf("load %s: %w", src, err)
			}
			perSource[i] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []model.Article
	for _, articles := range perSource {
		all = append(all, articles...)
	}
	all = Dedupe(all)
	model.EnsureIDs(all)
	return all, nil
}

// Load reads one source, a file path or an http(s) URL
func (l *Loader) Load(ctx context.Context, source string) ([]model.Article, error) {
	data, err := l.read(ctx, source)
	if err != nil {
		return nil, err
	}

	format := l.format
	if format == FormatAuto {
		format = detect(source, data)
	}

	var articles []model.Article
	switch format {
	case FormatJSON:
		articles, err = l.parseJSON(data)
	case FormatJSONL:
		articles, err = l.parseJSONL(data)
	case FormatFeed:
		articles, err = l.parseFeed(data)
	case FormatURLs:
		articles, err = parseURLList(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}
	if err != nil {
		return nil, err
	}

	for i := range articles {
		if articles[i].Source == "" {
			articles[i].Source = source
		}
	}
	return articles, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	if !isRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("read listing: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing: unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxListingBytes))
	if err != nil {
		return nil, fmt.Errorf("read listing: %w", err)
	}
	return data, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// detect picks a format from the file extension, then from the content
func detect(source string, data []byte) Format {
	if !isRemote(source) {
		switch strings.ToLower(filepath.Ext(source)) {
		case ".json":
			return FormatJSON
		case ".jsonl", ".ndjson":
			return FormatJSONL
		case ".xml", ".rss", ".atom":
			return FormatFeed
		case ".txt":
			return FormatURLs
		}
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0:
		return FormatURLs
	case trimmed[0] == '<':
		return FormatFeed
	case trimmed[0] == '[':
		return FormatJSON
	case trimmed[0] == '{':
		if bytes.Contains(trimmed, []byte("\n{")) {
			return FormatJSONL
		}
		return FormatJSON
	default:
		return FormatURLs
	}
}

// Dedupe drops articles whose URL was already seen, keeping the first.
// Articles without a URL are kept.
func Dedupe(articles []model.Article) []model.Article {
	seen := make(map[string]bool, len(articles))
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		key := strings.TrimSpace(a.URL)
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, a)
	}
	return out
}
