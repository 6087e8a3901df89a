package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/0ne-nine9/arbitr/internal/extract"
	"github.com/0ne-nine9/arbitr/internal/model"
	"github.com/0ne-nine9/arbitr/internal/pipeline"
	"github.com/0ne-nine9/arbitr/internal/stats"
	"github.com/0ne-nine9/arbitr/internal/store"
)

var (
	reportStore     string
	reportRun       string
	reportOutputDir string
	reportMarkdown  bool
	reportReanalyze bool
	reportTaxonomy  string
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report [results.json]",
	Short: "Re-export results from a previous run",
	Long: `Report reloads a results.json file (or the articles of a SQLite store)
and rewrites every output file without fetching anything. With --reanalyze
the stored text is classified again, e.g. after changing the taxonomy.

Example:
  arbitr report arbitr-output/results.json --markdown
  arbitr report --store arbitr.db --output-dir ./report
  arbitr report results.json --reanalyze --taxonomy taxonomy.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportStore, "store", "", "read articles from this SQLite store instead of a results file")
	reportCmd.Flags().StringVar(&reportRun, "run", "", "with --store, only the articles last written by this run")
	reportCmd.Flags().StringVarP(&reportOutputDir, "output-dir", "o", "", "output directory (default: the configured output dir)")
	reportCmd.Flags().BoolVar(&reportMarkdown, "markdown", false, "also write summary.md")
	reportCmd.Flags().BoolVar(&reportReanalyze, "reanalyze", false, "classify the stored text again")
	reportCmd.Flags().StringVar(&reportTaxonomy, "taxonomy", "", "YAML industry taxonomy for --reanalyze")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	results, err := loadReportResults(cmd.Context(), cfg, args)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d articles\n", results.TotalCount)

	if reportReanalyze {
		if err := reanalyze(results.Articles, reportTaxonomy); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "✓ Re-analyzed %d articles\n", len(results.Articles))
	}

	dir := reportOutputDir
	if dir == "" {
		dir = cfg.Output.Dir
	}
	written, err := pipeline.NewRenderer(cfg.Output.TopKeywords).WriteAll(dir, results, reportMarkdown || cfg.Output.Markdown)
	if err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	for _, path := range written {
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	}

	pipeline.RenderSummary(os.Stderr, stats.Summarize(results.Articles, cfg.Output.TopKeywords))
	return nil
}

func loadReportResults(ctx context.Context, cfg *model.Config, args []string) (model.Results, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if reportStore != "" {
		db, err := store.Open(ctx, reportStore)
		if err != nil {
			return model.Results{}, fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = db.Close() }()

		articles, err := db.Articles(ctx, reportRun)
		if err != nil {
			return model.Results{}, err
		}
		return model.NewResults(articles, time.Now()), nil
	}

	path := filepath.Join(cfg.Output.Dir, pipeline.ResultsJSONFile)
	if len(args) > 0 {
		path = args[0]
	}
	return pipeline.LoadResults(path)
}

// reanalyze replaces each article's analysis using its stored text
func reanalyze(articles []model.Article, taxonomyFile string) error {
	var taxonomy *extract.Taxonomy
	if taxonomyFile != "" {
		t, err := extract.LoadTaxonomy(taxonomyFile)
		if err != nil {
			return err
		}
		taxonomy = t
	}

	analyzer := extract.NewAnalyzer(taxonomy)
	for i := range articles {
		analyzer.AnalyzeArticle(&articles[i])
	}
	return nil
}
