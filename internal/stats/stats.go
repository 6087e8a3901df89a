// Package stats aggregates analyzed articles into the per-category counts
// used by reports and chart data.
package stats

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/0ne-nine9/arbitr/internal/model"
)

// ArticleRef identifies an article inside a bucket
type ArticleRef struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Bucket is one value of a category with the articles that carry it.
// Count is the bucket's ranking figure: articles for industries, methods
// and timelines; total mentions for countries; total occurrences for
// keywords.
type Bucket struct {
	Value    string       `json:"value"`
	Count    int          `json:"count"`
	Articles []ArticleRef `json:"articles"`
}

// Summary is the aggregate view of a result set
type Summary struct {
	Total       int      `json:"total"`
	Dated       int      `json:"dated"`
	WithContent int      `json:"with_content"`
	Industries  []Bucket `json:"industries"`
	Countries   []Bucket `json:"countries"`
	Methods     []Bucket `json:"attack_methods"`
	Years       []Bucket `json:"years"`
	Months      []Bucket `json:"months"`
	Keywords    []Bucket `json:"keywords"`
}

// grouper collects articles per value, once per URL, remembering the order
// values were first seen
type grouper struct {
	order   []string
	refs    map[string][]ArticleRef
	seen    map[string]map[string]bool
	weights map[string]int
}

func newGrouper() *grouper {
	return &grouper{
		refs:    make(map[string][]ArticleRef),
		seen:    make(map[string]map[string]bool),
		weights: make(map[string]int),
	}
}

func (g *grouper) add(value string, a *model.Article, weight int) {
	urls, ok := g.seen[value]
	if !ok {
		urls = make(map[string]bool)
		g.seen[value] = urls
		g.order = append(g.order, value)
	}
	g.weights[value] += weight
	if urls[a.URL] {
		return
	}
	urls[a.URL] = true
	g.refs[value] = append(g.refs[value], ArticleRef{Title: a.Title, URL: a.URL})
}

// buckets returns the groups in first-seen order, Count set by count
func (g *grouper) buckets(count func(value string) int) []Bucket {
	out := make([]Bucket, 0, len(g.order))
	for _, v := range g.order {
		out = append(out, Bucket{Value: v, Count: count(v), Articles: g.refs[v]})
	}
	return out
}

func (g *grouper) byArticles(value string) int { return len(g.refs[value]) }
func (g *grouper) byWeight(value string) int   { return g.weights[value] }

// Summarize aggregates articles. Industries and methods rank by article
// count, countries by total mentions, keywords by total occurrences
// (ties alphabetical, at most topKeywords rows; zero means all). Timelines
// are chronological. Ties otherwise keep first-seen order.
func Summarize(articles []model.Article, topKeywords int) Summary {
	s := Summary{Total: len(articles)}

	industries := newGrouper()
	countries := newGrouper()
	methods := newGrouper()
	years := newGrouper()
	months := newGrouper()
	keywords := newGrouper()

	for i := range articles {
		a := &articles[i]

		if a.HasContent() {
			s.WithContent++
		}
		for _, ind := range a.Industries {
			industries.add(ind, a, 0)
		}
		for _, c := range a.Countries {
			countries.add(c, a, a.CountryMentions[c])
		}
		methods.add(string(model.ParseAttackMethod(string(a.AttackMethod))), a, 0)

		if !a.Date.IsZero() {
			s.Dated++
			years.add(strconv.Itoa(a.Date.Year()), a, 0)
			months.add(a.Date.MonthKey(), a, 0)
		}

		kws := make([]string, 0, len(a.KeywordCounts))
		for kw, n := range a.KeywordCounts {
			if n > 0 {
				kws = append(kws, kw)
			}
		}
		slices.Sort(kws)
		for _, kw := range kws {
			keywords.add(kw, a, a.KeywordCounts[kw])
		}
	}

	byCountDesc := func(x, y Bucket) int { return cmp.Compare(y.Count, x.Count) }
	byValue := func(x, y Bucket) int { return cmp.Compare(x.Value, y.Value) }

	s.Industries = industries.buckets(industries.byArticles)
	slices.SortStableFunc(s.Industries, byCountDesc)

	s.Countries = countries.buckets(countries.byWeight)
	slices.SortStableFunc(s.Countries, byCountDesc)

	s.Methods = methods.buckets(methods.byArticles)
	slices.SortStableFunc(s.Methods, byCountDesc)

	s.Years = years.buckets(years.byArticles)
	slices.SortFunc(s.Years, byValue)

	s.Months = months.buckets(months.byArticles)
	slices.SortFunc(s.Months, byValue)

	s.Keywords = keywords.buckets(keywords.byWeight)
	slices.SortFunc(s.Keywords, func(x, y Bucket) int {
		if c := byCountDesc(x, y); c != 0 {
			return c
		}
		return byValue(x, y)
	})
	if topKeywords > 0 && len(s.Keywords) > topKeywords {
		s.Keywords = s.Keywords[:topKeywords]
	}

	return s
}

// Find returns the named bucket of a category, if present
func Find(buckets []Bucket, value string) (Bucket, bool) {
	for _, b := range buckets {
		if b.Value == value {
			return b, true
		}
	}
	return Bucket{}, false
}
