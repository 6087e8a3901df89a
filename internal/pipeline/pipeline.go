package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/0ne-nine9/arbitr/internal/cache"
	"github.com/0ne-nine9/arbitr/internal/dates"
	"github.com/0ne-nine9/arbitr/internal/extract"
	"github.com/0ne-nine9/arbitr/internal/model"
	"github.com/0ne-nine9/arbitr/internal/util"
)

// Pipeline enriches one article at a time: date resolution, optional page
// fetch and text analysis
type Pipeline struct {
	fetcher    *Fetcher
	analyzer   *extract.Analyzer
	normalizer *dates.Normalizer
	logger     *zap.Logger
	now        func() time.Time
}

// Options assembles a Pipeline. A nil Fetcher disables page fetching.
type Options struct {
	Fetcher    *Fetcher
	Analyzer   *extract.Analyzer
	Normalizer *dates.Normalizer
	Logger     *zap.Logger
	Now        func() time.Time
}

// New creates a pipeline, filling unset options with defaults
func New(opts Options) *Pipeline {
	p := &Pipeline{
		fetcher:    opts.Fetcher,
		analyzer:   opts.Analyzer,
		normalizer: opts.Normalizer,
		logger:     opts.Logger,
		now:        opts.Now,
	}
	if p.analyzer == nil {
		p.analyzer = extract.NewAnalyzer(nil)
	}
	if p.normalizer == nil {
		p.normalizer = dates.NewNormalizer(dates.WithFuzzyParser(dates.DateParser{}))
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// NewPipeline wires a pipeline from configuration. delayer receives robots.txt
// crawl delays and may be nil.
func NewPipeline(cfg *model.Config, delayer CrawlDelayer, logger *zap.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	taxonomy := extract.DefaultTaxonomy()
	if cfg.Analysis.TaxonomyFile != "" {
		t, err := extract.LoadTaxonomy(cfg.Analysis.TaxonomyFile)
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
		taxonomy = t
	}

	var fetcher *Fetcher
	if cfg.HTTP.FetchContent {
		client, err := util.NewHTTPClient(util.ClientOptions{
			Timeout:     cfg.HTTP.Timeout,
			InsecureTLS: cfg.HTTP.InsecureTLS,
			HTTPProxy:   cfg.HTTP.HTTPProxy,
			HTTPSProxy:  cfg.HTTP.HTTPSProxy,
		})
		if err != nil {
			return nil, fmt.Errorf("create HTTP client: %w", err)
		}

		opts := FetcherOptions{
			Client:          client,
			UserAgent:       cfg.HTTP.UserAgent,
			MaxBytes:        cfg.HTTP.MaxBodyBytes,
			MaxRetries:      cfg.HTTP.MaxRetries,
			ExcludedDomains: cfg.HTTP.ExcludedDomains,
			CrawlDelayer:    delayer,
			Logger:          logger,
		}
		if cfg.HTTP.RespectRobots {
			opts.Robots = util.NewRobotsChecker(client, cfg.HTTP.UserAgent)
		}
		if cfg.Cache.Enabled {
			opts.Cache = cache.NewPageCache(cfg.Cache.Dir, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL)
		}
		fetcher = NewFetcherWithOptions(opts)
	}

	return New(Options{
		Fetcher:    fetcher,
		Analyzer:   extract.NewAnalyzer(taxonomy),
		Normalizer: NewNormalizer(cfg.Dates),
		Logger:     logger,
	}), nil
}

// NewNormalizer builds a date normalizer from configuration
func NewNormalizer(cfg model.DatesConfig) *dates.Normalizer {
	opts := []dates.Option{
		dates.WithBodyScan(cfg.BodyScanLines, cfg.BodyScanChars, cfg.BodyMaxCandidates),
	}
	if cfg.Fuzzy {
		opts = append(opts, dates.WithFuzzyParser(dates.DateParser{}))
	}
	if cfg.MinYear > 0 && cfg.MaxYear >= cfg.MinYear {
		opts = append(opts, dates.WithWindow(dates.Window{From: cfg.MinYear, To: cfg.MaxYear}))
	}
	if cfg.BodyMinYear > 0 && cfg.BodyMaxYear >= cfg.BodyMinYear {
		opts = append(opts, dates.WithBodyWindow(dates.Window{From: cfg.BodyMinYear, To: cfg.BodyMaxYear}))
	}
	return dates.NewNormalizer(opts...)
}

// Analyzer returns the analyzer in use
func (p *Pipeline) Analyzer() *extract.Analyzer {
	return p.analyzer
}

// Normalizer returns the date normalizer in use
func (p *Pipeline) Normalizer() *dates.Normalizer {
	return p.normalizer
}

// Process enriches article in place. The article is always analyzed; a
// fetch failure is recorded on the article and returned, while excluded
// domains are skipped silently.
func (p *Pipeline) Process(ctx context.Context, article *model.Article) error {
	now := p.now()

	if article.Date.IsZero() && article.DateText != "" {
		if d := p.normalizer.Normalize(article.DateText, dates.SearchIndex, now); !d.IsZero() {
			article.Date = d
			article.DateSource = dates.SearchIndex.String()
		}
	}

	var fetchErr error
	if p.fetcher != nil && article.URL != "" && !article.HasContent() {
		fetchErr = p.enrich(ctx, article, now)
	}

	// Body text is the last date source, whether fetched or supplied
	if article.Date.IsZero() && article.HasContent() {
		if d := p.normalizer.Normalize(article.FullContent, dates.Body, now); !d.IsZero() {
			article.Date = d
			article.DateSource = dates.Body.String()
		}
	}

	p.analyzer.AnalyzeArticle(article)

	switch {
	case fetchErr == nil:
		article.Error = ""
		return nil
	case errors.Is(fetchErr, ErrExcludedDomain):
		p.logger.Debug("skipping content fetch for excluded domain", zap.String("url", article.URL))
		return nil
	default:
		article.Error = fetchErr.Error()
		return fetchErr
	}
}

// enrich fetches the article page, stores its main text and fills a
// missing date from meta tags, then from the body
func (p *Pipeline) enrich(ctx context.Context, article *model.Article, now time.Time) error {
	result, err := p.fetcher.Get(ctx, article.URL)
	if err != nil {
		return err
	}
	meta := result.Meta
	article.FetchMeta = &meta

	page, err := ParsePage(result.HTML)
	if err != nil {
		return err
	}
	article.FullContent = strings.TrimSpace(page.Text)

	if !article.Date.IsZero() {
		return nil
	}

	for _, raw := range page.MetaDates {
		if d := p.normalizer.Normalize(raw, dates.Meta, now); !d.IsZero() {
			article.Date = d
			article.DateSource = dates.Meta.String()
			return nil
		}
	}
	return nil
}
