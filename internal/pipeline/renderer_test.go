package pipeline

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ne-nine9/arbitr/internal/dates"
	"github.com/0ne-nine9/arbitr/internal/model"
	"github.com/0ne-nine9/arbitr/internal/stats"
)

func renderFixture(t *testing.T) model.Results {
	t.Helper()
	d, err := dates.Parse("2024-03-05")
	require.NoError(t, err)

	articles := []model.Article{
		{
			Title: "Pipeline blast, Baltic", URL: "https://a.example/1", Date: d, Snippet: "Blast hit a gas pipeline.",
			Analysis: model.Analysis{
				Industries:      []string{"energy", "transportation"},
				Countries:       []string{"Russia", "Germany"},
				CountryMentions: map[string]int{"Russia": 2, "Germany": 1},
				AttackMethod:    model.AttackDirect,
				KeywordCounts:   map[string]int{"gas pipeline": 1},
			},
		},
		{
			Title: "Unclear fire", URL: "https://a.example/2",
			Analysis: model.Analysis{
				Industries:      []string{},
				Countries:       []string{},
				CountryMentions: map[string]int{},
				AttackMethod:    model.AttackUnknown,
			},
		},
	}
	return model.NewResults(articles, time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC))
}

func TestWriteResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResultsCSV(&buf, renderFixture(t).Articles))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, resultsCSVHeader, rows[0])
	assert.Equal(t, []string{
		"Pipeline blast, Baltic", "https://a.example/1", "2024-03-05", "Blast hit a gas pipeline.",
		"energy, transportation", "Russia, Germany", "Russia: 2, Germany: 1", "direct",
	}, rows[1])
	assert.Equal(t, "", rows[2][2], "unknown date renders empty")
	assert.Equal(t, "unknown", rows[2][7])
}

func TestWriteUnknown(t *testing.T) {
	results := renderFixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteUnknown(&buf, results.UnknownArticles()))

	want := "Articles with Unknown/Other Attack Methods\n" +
		strings.Repeat("=", 60) + "\n" +
		"Total: 1 articles\n" +
		strings.Repeat("=", 60) + "\n\n" +
		"1. https://a.example/2\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteVisualization(t *testing.T) {
	summary := stats.Summarize(renderFixture(t).Articles, 10)

	var buf bytes.Buffer
	require.NoError(t, WriteVisualization(&buf, summary))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, visualizationHeader, rows[0])
	assert.Contains(t, rows, []string{"Industry", "energy", "1", "Pipeline blast, Baltic", "https://a.example/1"})
	assert.Contains(t, rows, []string{"Country", "Russia", "2 mentions in 1 articles", "Pipeline blast, Baltic", "https://a.example/1"})
	assert.Contains(t, rows, []string{"Attack Method", "unknown", "1", "Unclear fire", "https://a.example/2"})
	assert.Contains(t, rows, []string{"Year", "2024", "1", "Pipeline blast, Baltic", "https://a.example/1"})
	assert.Contains(t, rows, []string{"Month", "2024-03", "1", "Pipeline blast, Baltic", "https://a.example/1"})
	assert.Contains(t, rows, []string{"Keyword", "gas pipeline", "1", "Pipeline blast, Baltic", "https://a.example/1"})
}

func TestWriteMarkdown(t *testing.T) {
	results := renderFixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, results, stats.Summarize(results.Articles, 5)))

	out := buf.String()
	assert.Contains(t, out, "# Sabotage Article Analysis")
	assert.Contains(t, out, "- Articles: 2")
	assert.Contains(t, out, "| Russia | 2 (1) |")
	assert.Contains(t, out, "## Unattributed Articles (1)")
	assert.Contains(t, out, "- [Unclear fire](https://a.example/2)")
}

func TestWriteAllAndLoadResults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	results := renderFixture(t)

	written, err := NewRenderer(30).WriteAll(dir, results, true)
	require.NoError(t, err)
	assert.Len(t, written, 5)
	for _, name := range []string{ResultsJSONFile, ResultsCSVFile, UnknownFile, VisualizationFile, SummaryFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	loaded, err := LoadResults(filepath.Join(dir, ResultsJSONFile))
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalCount)
	assert.True(t, results.Timestamp.Equal(loaded.Timestamp))
	assert.Equal(t, results.Articles[0].Date, loaded.Articles[0].Date)
	assert.Equal(t, results.Articles[0].CountryMentions, loaded.Articles[0].CountryMentions)
	assert.True(t, loaded.Articles[1].Date.IsZero())
}

func TestWriteAllWithoutMarkdown(t *testing.T) {
	dir := t.TempDir()
	written, err := NewRenderer(0).WriteAll(dir, model.NewResults(nil, time.Now()), false)
	require.NoError(t, err)
	assert.Len(t, written, 4)

	_, err = os.Stat(filepath.Join(dir, SummaryFile))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadResults_Errors(t *testing.T) {
	_, err := LoadResults(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = LoadResults(bad)
	assert.Error(t, err)
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	RenderSummary(&buf, stats.Summarize(renderFixture(t).Articles, 0))

	out := buf.String()
	assert.Contains(t, out, "Articles:      2")
	assert.Contains(t, out, "Top country:   Russia (2 mentions)")
}
