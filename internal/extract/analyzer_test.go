package extract

import (
	"strings"
	"testing"

	"github.com/0ne-nine9/arbitr/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildText_TitleAndSnippet(t *testing.T) {
	assert.Equal(t, "rail sabotage in poland police say", BuildText("Rail Sabotage in Poland", "Police say", ""))
}

func TestBuildText_FiltersContent(t *testing.T) {
	content := strings.Join([]string{
		"A freight train derailed near Lublin.",
		"ok",
		"Read more at https://example.com/story",
		"Filed under a/b/c/d/e",
		"Investigators suspect sabotage.",
		"   ",
		"Tags: rail, poland",
		"Share this article",
	}, "\n")

	got := BuildText("Derailment", "ignored snippet", content)
	assert.Equal(t, "derailment a freight train derailed near lublin. investigators suspect sabotage.", got)
	assert.NotContains(t, got, "tags", "trailing lines are outside the main body share")
	assert.NotContains(t, got, "snippet")
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := NewAnalyzer(nil)

	got := a.Analyze("arson at a rail yard in poland; police arrested a criminal gang recruited online. poland's railway operator said")

	assert.Equal(t, []string{"transportation"}, got.Industries)
	assert.Equal(t, []string{"Poland"}, got.Countries)
	assert.Equal(t, map[string]int{"Poland": 2}, got.CountryMentions)
	assert.Equal(t, model.AttackProxy, got.AttackMethod)
	assert.Equal(t, 1, got.KeywordCounts["rail yard"])
	assert.Equal(t, 1, got.KeywordCounts["railway"])
}

func TestAnalyzer_EmptyText(t *testing.T) {
	got := NewAnalyzer(nil).Analyze("")

	assert.Empty(t, got.Industries)
	assert.Empty(t, got.Countries)
	assert.Empty(t, got.CountryMentions)
	assert.Equal(t, model.AttackUnknown, got.AttackMethod)
}

func TestAnalyzer_AnalyzeArticle(t *testing.T) {
	a := NewAnalyzer(nil)
	article := &model.Article{
		Title:   "GRU linked to substation fire in Germany",
		Snippet: "Officials blame Russian intelligence.",
	}

	a.AnalyzeArticle(article)

	require.Equal(t, []string{"energy"}, article.Industries)
	assert.Equal(t, []string{"Germany"}, article.Countries)
	assert.Equal(t, model.AttackDirect, article.AttackMethod)
	assert.Equal(t, []string{"Germany: 1"}, article.MentionsList())
}
