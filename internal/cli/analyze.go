package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/0ne-nine9/arbitr/internal/listing"
	"github.com/0ne-nine9/arbitr/internal/model"
	"github.com/0ne-nine9/arbitr/internal/pipeline"
	"github.com/0ne-nine9/arbitr/internal/stats"
	"github.com/0ne-nine9/arbitr/internal/store"
	"github.com/0ne-nine9/arbitr/internal/util"
	"github.com/0ne-nine9/arbitr/internal/worker"
)

var (
	listingFormat  string
	analyzeTimeout time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <listing>...",
	Short: "Fetch, date and classify every article of one or more listings",
	Long: `Analyze loads search listings (JSON, JSONL, RSS/Atom feeds or plain URL
lists, as files or URLs), then for every article:
- fetches the page and extracts its main text (unless --fetch=false)
- resolves the publication date: listing date, then meta tags, then body text
- tags industries, countries and the attribution verdict

Results are written to the output directory as results.json, results.csv,
unknown_articles.txt and visualization_data.csv (plus summary.md with
--markdown), and optionally saved to a SQLite store.

Example:
  arbitr analyze results.json
  arbitr analyze feed.xml urls.txt --workers 8 --output-dir ./out
  arbitr analyze https://news.example/sabotage.rss --fetch=false --markdown`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	defaults := model.DefaultConfig()
	flags := analyzeCmd.Flags()

	flags.StringVar(&listingFormat, "format", "auto", "listing format (auto, json, jsonl, feed, urls)")
	flags.DurationVar(&analyzeTimeout, "timeout", 30*time.Minute, "total timeout for the run")

	flags.StringP("output-dir", "o", defaults.Output.Dir, "output directory for result files")
	flags.Bool("markdown", defaults.Output.Markdown, "also write summary.md")
	flags.IntP("workers", "w", defaults.Concurrency.Workers, "number of concurrent workers")
	flags.Float64("rps", defaults.RateLimiting.RequestsPerSecond, "requests per second per domain (0 disables limiting)")
	flags.Bool("fetch", defaults.HTTP.FetchContent, "fetch article pages for body text and dates")
	flags.Bool("cache", defaults.Cache.Enabled, "use the page cache")
	flags.Bool("robots", defaults.HTTP.RespectRobots, "honour robots.txt")
	flags.String("store", defaults.Store.Path, "SQLite database to save results into")
	flags.String("taxonomy", defaults.Analysis.TaxonomyFile, "YAML industry taxonomy replacing the built-in one")
	flags.String("ua", defaults.HTTP.UserAgent, "HTTP User-Agent")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	bindings := map[string]string{
		"output.dir":                        "output-dir",
		"output.markdown":                   "markdown",
		"concurrency.workers":               "workers",
		"rate_limiting.requests_per_second": "rps",
		"http.fetch_content":                "fetch",
		"cache.enabled":                     "cache",
		"http.respect_robots":               "robots",
		"store.path":                        "store",
		"analysis.taxonomy_file":            "taxonomy",
		"http.user_agent":                   "ua",
		"http.http_proxy":                   "http-proxy",
		"http.https_proxy":                  "https-proxy",
	}
	for key, name := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, err := listing.ParseFormat(listingFormat)
	if err != nil {
		return err
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Arbitr Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Listings:     %d\n", len(args))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Fetch pages:  %v\n", cfg.HTTP.FetchContent)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	client, err := util.NewHTTPClient(util.ClientOptions{
		Timeout:     cfg.HTTP.Timeout,
		InsecureTLS: cfg.HTTP.InsecureTLS,
		HTTPProxy:   cfg.HTTP.HTTPProxy,
		HTTPSProxy:  cfg.HTTP.HTTPSProxy,
	})
	if err != nil {
		return fmt.Errorf("create HTTP client: %w", err)
	}

	loader := listing.NewLoader(pipeline.NewNormalizer(cfg.Dates),
		listing.WithFormat(format),
		listing.WithHTTPClient(client, cfg.HTTP.UserAgent),
	)
	articles, err := loader.LoadAll(ctx, args)
	if err != nil {
		return fmt.Errorf("load listings: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d articles\n", len(articles))

	var (
		limiter *worker.Limiter
		delayer pipeline.CrawlDelayer
	)
	if cfg.RateLimiting.RequestsPerSecond > 0 {
		limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
		delayer = limiter
	}

	p, err := pipeline.NewPipeline(cfg, delayer, logger)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers, 0, 0).
		WithLimiter(limiter).
		WithLogger(logger).
		WithProgress(func(done, total int, r *worker.ArticleResult) {
			if !cfg.Output.Verbose {
				return
			}
			mark := "✓"
			if r.Error != nil {
				mark = "✗"
			}
			fmt.Fprintf(os.Stderr, "%s [%d/%d] %s (%s)\n", mark, done, total, r.Article.URL, r.Article.AttackMethod)
		})

	fmt.Fprintf(os.Stderr, "⚙️  Processing articles with %d workers...\n", cfg.Concurrency.Workers)

	refs := make([]*model.Article, len(articles))
	for i := range articles {
		refs[i] = &articles[i]
	}
	failures := 0
	for _, r := range processor.ProcessArticles(ctx, refs) {
		if r.Error != nil {
			failures++
		}
	}

	results := model.NewResults(articles, time.Now())
	if err := saveResults(context.WithoutCancel(ctx), cfg, results, logger); err != nil {
		return err
	}

	pipeline.RenderSummary(os.Stderr, stats.Summarize(results.Articles, cfg.Output.TopKeywords))
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", cfg.Output.Dir)
	fmt.Fprintf(os.Stderr, "\n")

	return ctx.Err()
}

// saveResults writes the result files and, when configured, the store
func saveResults(ctx context.Context, cfg *model.Config, results model.Results, logger *zap.Logger) error {
	written, err := pipeline.NewRenderer(cfg.Output.TopKeywords).WriteAll(cfg.Output.Dir, results, cfg.Output.Markdown)
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	for _, path := range written {
		logger.Debug("wrote output", zap.String("path", path))
	}

	if cfg.Store.Path == "" {
		return nil
	}

	db, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = db.Close() }()

	runID, err := db.SaveResults(ctx, results)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Saved run %s to %s\n", runID, cfg.Store.Path)
	return nil
}
