package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/0ne-nine9/arbitr/internal/model"
	"github.com/0ne-nine9/arbitr/internal/stats"
)

// Output file names inside the output directory
const (
	ResultsJSONFile   = "results.json"
	ResultsCSVFile    = "results.csv"
	UnknownFile       = "unknown_articles.txt"
	VisualizationFile = "visualization_data.csv"
	SummaryFile       = "summary.md"
)

var resultsCSVHeader = []string{
	"Title", "URL", "Date", "Snippet", "Industries", "Countries", "Country Mentions (Counts)", "Attack Method",
}

var visualizationHeader = []string{"Category", "Value", "Count", "Article Titles", "Article URLs"}

const rule = "============================================================"

// Renderer writes results and their aggregates to disk
type Renderer struct {
	topKeywords int
}

// NewRenderer creates a renderer; topKeywords bounds the keyword rows of
// the chart data (zero means all)
func NewRenderer(topKeywords int) *Renderer {
	return &Renderer{topKeywords: topKeywords}
}

type output struct {
	name  string
	write func(io.Writer) error
}

// WriteAll writes every output file into dir and returns the paths written
func (r *Renderer) WriteAll(dir string, results model.Results, markdown bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	summary := stats.Summarize(results.Articles, r.topKeywords)

	outputs := []output{
		{ResultsJSONFile, func(w io.Writer) error { return WriteResultsJSON(w, results) }},
		{ResultsCSVFile, func(w io.Writer) error { return WriteResultsCSV(w, results.Articles) }},
		{UnknownFile, func(w io.Writer) error { return WriteUnknown(w, results.UnknownArticles()) }},
		{VisualizationFile, func(w io.Writer) error { return WriteVisualization(w, summary) }},
	}
	if markdown {
		outputs = append(outputs, output{SummaryFile, func(w io.Writer) error { return WriteMarkdown(w, results, summary) }})
	}

	var written []string
	for _, out := range outputs {
		path := filepath.Join(dir, out.name)
		if err := writeFile(path, out.write); err != nil {
			return written, fmt.Errorf("write %s: %w", out.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteResultsJSON writes the results document
func WriteResultsJSON(w io.Writer, results model.Results) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(results)
}

// LoadResults reads a results document written by WriteResultsJSON
func LoadResults(path string) (model.Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Results{}, fmt.Errorf("read results: %w", err)
	}

	var results model.Results
	if err := json.Unmarshal(data, &results); err != nil {
		return model.Results{}, fmt.Errorf("parse results: %w", err)
	}
	if results.Articles == nil {
		results.Articles = []model.Article{}
	}
	results.TotalCount = len(results.Articles)
	return results, nil
}

// WriteResultsCSV writes one row per article
func WriteResultsCSV(w io.Writer, articles []model.Article) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultsCSVHeader); err != nil {
		return err
	}

	for _, a := range articles {
		row := []string{
			a.Title,
			a.URL,
			a.Date.String(),
			a.Snippet,
			strings.Join(a.Industries, ", "),
			strings.Join(a.Countries, ", "),
			strings.Join(a.MentionsList(), ", "),
			string(model.ParseAttackMethod(string(a.AttackMethod))),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteUnknown lists the URLs of articles attributed to neither side
func WriteUnknown(w io.Writer, articles []model.Article) error {
	var b strings.Builder
	b.WriteString("Articles with Unknown/Other Attack Methods\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total: %d articles\n", len(articles))
	b.WriteString(rule + "\n\n")
	for i, a := range articles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.URL)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteVisualization writes the chart data: one row per category value
// with the titles and URLs of its articles
func WriteVisualization(w io.Writer, s stats.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(visualizationHeader); err != nil {
		return err
	}

	sections := []struct {
		category string
		buckets  []stats.Bucket
		count    func(stats.Bucket) string
	}{
		{"Industry", s.Industries, plainCount},
		{"Country", s.Countries, func(b stats.Bucket) string {
			return fmt.Sprintf("%d mentions in %d articles", b.Count, len(b.Articles))
		}},
		{"Attack Method", s.Methods, plainCount},
		{"Year", s.Years, plainCount},
		{"Month", s.Months, plainCount},
		{"Keyword", s.Keywords, plainCount},
	}

	for _, sec := range sections {
		for _, b := range sec.buckets {
			titles := make([]string, len(b.Articles))
			urls := make([]string, len(b.Articles))
			for i, ref := range b.Articles {
				titles[i] = ref.Title
				urls[i] = ref.URL
			}
			row := []string{sec.category, b.Value, sec.count(b), strings.Join(titles, " | "), strings.Join(urls, " | ")}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func plainCount(b stats.Bucket) string {
	return strconv.Itoa(b.Count)
}

// WriteMarkdown writes a human-readable summary of the run
func WriteMarkdown(w io.Writer, results model.Results, s stats.Summary) error {
	var b strings.Builder

	b.WriteString("# Sabotage Article Analysis\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", results.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- Articles: %d\n", s.Total)
	fmt.Fprintf(&b, "- Dated: %d\n", s.Dated)
	fmt.Fprintf(&b, "- With full content: %d\n\n", s.WithContent)

	table := func(title, valueHeader, countHeader string, buckets []stats.Bucket, count func(stats.Bucket) string) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		if len(buckets) == 0 {
			b.WriteString("_None._\n\n")
			return
		}
		fmt.Fprintf(&b, "| %s | %s |\n|---|---:|\n", valueHeader, countHeader)
		for _, bucket := range buckets {
			fmt.Fprintf(&b, "| %s | %s |\n", escapeCell(bucket.Value), count(bucket))
		}
		b.WriteString("\n")
	}

	table("Attack Methods", "Method", "Articles", s.Methods, plainCount)
	table("Industries", "Industry", "Articles", s.Industries, plainCount)
	table("Countries", "Country", "Mentions (articles)", s.Countries, func(bk stats.Bucket) string {
		return fmt.Sprintf("%d (%d)", bk.Count, len(bk.Articles))
	})
	table("Articles per Year", "Year", "Articles", s.Years, plainCount)
	table("Articles per Month", "Month", "Articles", s.Months, plainCount)
	table("Top Industry Keywords", "Keyword", "Occurrences", s.Keywords, plainCount)

	unknown := results.UnknownArticles()
	fmt.Fprintf(&b, "## Unattributed Articles (%d)\n\n", len(unknown))
	for _, a := range unknown {
		fmt.Fprintf(&b, "- [%s](%s)\n", escapeLinkText(a.Title), a.URL)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func escapeLinkText(s string) string {
	if s == "" {
		return "untitled"
	}
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

// RenderSummary prints a short run summary, the way the CLI reports a
// finished batch
func RenderSummary(w io.Writer, s stats.Summary) {
	fmt.Fprintf(w, "\n═══════════════════════════════════════\n")
	fmt.Fprintf(w, "Analysis Summary\n")
	fmt.Fprintf(w, "═══════════════════════════════════════\n")
	fmt.Fprintf(w, "Articles:      %d\n", s.Total)
	fmt.Fprintf(w, "Dated:         %d\n", s.Dated)
	fmt.Fprintf(w, "Full content:  %d\n", s.WithContent)
	for _, m := range s.Methods {
		fmt.Fprintf(w, "  %-12s %d\n", m.Value+":", m.Count)
	}
	if len(s.Industries) > 0 {
		top := s.Industries[0]
		fmt.Fprintf(w, "Top industry:  %s (%d)\n", top.Value, top.Count)
	}
	if len(s.Countries) > 0 {
		top := s.Countries[0]
		fmt.Fprintf(w, "Top country:   %s (%d mentions)\n", top.Value, top.Count)
	}
	fmt.Fprintf(w, "═══════════════════════════════════════\n")
}
