package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0ne-nine9/arbitr/internal/dates"
	"github.com/0ne-nine9/arbitr/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "arbitr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleArticles(t *testing.T) []model.Article {
	t.Helper()
	d, err := dates.Parse("2024-03-05")
	require.NoError(t, err)

	return []model.Article{
		{
			ID: "01A", Title: "Pipeline blast", URL: "https://a.example/1", Date: d, DateSource: "meta",
			FullContent: "Body", FetchMeta: &model.FetchMeta{StatusCode: 200, ETag: `"x"`},
			Analysis: model.Analysis{
				Industries:      []string{"energy"},
				Countries:       []string{"Russia"},
				CountryMentions: map[string]int{"Russia": 2},
				AttackMethod:    model.AttackDirect,
			},
		},
		{
			Title: "Unclear fire", URL: "https://a.example/2", Error: "unexpected status: 404 Not Found",
			Analysis: model.Analysis{
				Industries:      []string{},
				Countries:       []string{},
				CountryMentions: map[string]int{},
				AttackMethod:    model.AttackUnknown,
			},
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.SaveResults(ctx, model.NewResults(sampleArticles(t), time.Now()))
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	articles, err := s.Articles(ctx, "")
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "01A", first.ID)
	assert.Equal(t, "2024-03-05", first.Date.String())
	assert.Equal(t, model.AttackDirect, first.AttackMethod)
	assert.Equal(t, map[string]int{"Russia": 2}, first.CountryMentions)
	require.NotNil(t, first.FetchMeta)
	assert.Equal(t, `"x"`, first.FetchMeta.ETag)

	second := articles[1]
	assert.NotEmpty(t, second.ID, "missing IDs are assigned")
	assert.True(t, second.Date.IsZero())
	assert.Nil(t, second.FetchMeta)
	assert.Equal(t, "unexpected status: 404 Not Found", second.Error)
}

func TestSaveUpsertsByURL(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SaveResults(ctx, model.NewResults(sampleArticles(t), time.Now()))
	require.NoError(t, err)

	again := sampleArticles(t)[1:]
	again[0].AttackMethod = model.AttackProxy
	again[0].Error = ""
	runID, err := s.SaveResults(ctx, model.NewResults(again, time.Now().Add(time.Minute)))
	require.NoError(t, err)

	all, err := s.Articles(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	latest, err := s.Articles(ctx, runID)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, model.AttackProxy, latest[0].AttackMethod)
	assert.Empty(t, latest[0].Error)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.AttackMethod]int{model.AttackDirect: 1, model.AttackProxy: 1}, counts)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, 1, runs[0].ArticleCount)
}

func TestArticlesWithoutURLAreKept(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	articles := []model.Article{{Title: "a"}, {Title: "b"}}
	_, err = s.SaveResults(context.Background(), model.NewResults(articles, time.Now()))
	require.NoError(t, err)

	loaded, err := s.Articles(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
	assert.Equal(t, model.AttackUnknown, loaded[0].AttackMethod)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arbitr.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.SaveResults(ctx, model.NewResults(sampleArticles(t), time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	articles, err := s.Articles(ctx, "")
	require.NoError(t, err)
	assert.Len(t, articles, 2)
}
