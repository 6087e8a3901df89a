package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/0ne-nine9/arbitr/internal/model"
)

// Enricher fetches and analyzes a single article in place
type Enricher interface {
	Process(ctx context.Context, article *model.Article) error
}

// ArticleJob enriches one article of a batch
type ArticleJob struct {
	Index    int
	Article  *model.Article
	Enricher Enricher
	Limiter  *Limiter
}

// Execute waits for the article's domain slot and runs the enricher.
// A panicking enricher is reported as the job's error.
func (j *ArticleJob) Execute(ctx context.Context) (res Result) {
	result := &ArticleResult{Index: j.Index, Article: j.Article}

	defer func() {
		if r := recover(); r != nil {
			result.Error = fmt.Errorf("process %s: panic: %v", j.Article.URL, r)
			res = result
		}
	}()

	if j.Limiter != nil && j.Article.URL != "" {
		if err := j.Limiter.Wait(ctx, j.Article.URL); err != nil {
			result.Error = fmt.Errorf("rate limit: %w", err)
			return result
		}
	}

	result.Error = j.Enricher.Process(ctx, j.Article)
	return result
}

// ArticleResult represents the result of an article job
type ArticleResult struct {
	Index   int
	Article *model.Article
	Error   error
}

// GetError returns the error from the article result
func (r *ArticleResult) GetError() error {
	return r.Error
}

// ProgressFunc is called after each article completes
type ProgressFunc func(done, total int, result *ArticleResult)

// BatchProcessor enriches many articles concurrently
type BatchProcessor struct {
	enricher    Enricher
	concurrency int
	limiter     *Limiter
	logger      *zap.Logger
	progress    ProgressFunc
}

// NewBatchProcessor creates a batch processor. A positive rate enables
// per-domain rate limiting.
func NewBatchProcessor(enricher Enricher, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}
	return &BatchProcessor{
		enricher:    enricher,
		concurrency: concurrency,
		limiter:     limiter,
		logger:      zap.NewNop(),
	}
}

// WithLogger sets the logger used for per-article failures
func (b *BatchProcessor) WithLogger(logger *zap.Logger) *BatchProcessor {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithProgress sets a callback invoked as articles complete
func (b *BatchProcessor) WithProgress(fn ProgressFunc) *BatchProcessor {
	b.progress = fn
	return b
}

// WithLimiter replaces the processor's rate limiter. A nil limiter turns
// limiting off.
func (b *BatchProcessor) WithLimiter(limiter *Limiter) *BatchProcessor {
	b.limiter = limiter
	return b
}

// Limiter returns the processor's rate limiter, nil when limiting is off
func (b *BatchProcessor) Limiter() *Limiter {
	return b.limiter
}

// ProcessArticles enriches every article and returns one result per input,
// in input order. Articles never reached because ctx was cancelled carry
// the context error.
func (b *BatchProcessor) ProcessArticles(ctx context.Context, articles []*model.Article) []*ArticleResult {
	if len(articles) == 0 {
		return []*ArticleResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	go func() {
		defer pool.Close()
		for i, article := range articles {
			job := &ArticleJob{
				Index:    i,
				Article:  article,
				Enricher: b.enricher,
				Limiter:  b.limiter,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()

	ordered := make([]*ArticleResult, len(articles))
	done := 0
	for r := range pool.Results() {
		result := r.(*ArticleResult)
		ordered[result.Index] = result
		done++

		if result.Error != nil {
			b.logger.Warn("article failed",
				zap.String("url", result.Article.URL),
				zap.Error(result.Error))
		}
		if b.progress != nil {
			b.progress(done, len(articles), result)
		}
	}

	for i, result := range ordered {
		if result == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &ArticleResult{Index: i, Article: articles[i], Error: err}
		}
	}

	return ordered
}
