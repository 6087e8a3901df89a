// Package extract derives industries, countries and attribution from
// article text by surface lexical matching.
package extract

import (
	"github.com/0ne-nine9/arbitr/internal/model"
)

// Analyzer runs the three text classifiers over one text body.
// It holds only read-only tables and is safe for concurrent use.
type Analyzer struct {
	taxonomy    *Taxonomy
	countries   *CountryRegistry
	attribution *AttributionClassifier
}

// NewAnalyzer creates an analyzer. A nil taxonomy selects the built-in one.
func NewAnalyzer(taxonomy *Taxonomy) *Analyzer {
	if taxonomy == nil {
		taxonomy = DefaultTaxonomy()
	}
	return &Analyzer{
		taxonomy:    taxonomy,
		countries:   DefaultCountryRegistry(),
		attribution: DefaultAttributionClassifier(),
	}
}

// Taxonomy returns the taxonomy in use
func (a *Analyzer) Taxonomy() *Taxonomy {
	return a.taxonomy
}

// Analyze classifies one lower-cased text body
func (a *Analyzer) Analyze(text string) model.Analysis {
	countries, mentions := a.countries.Extract(text)
	return model.Analysis{
		Industries:      a.taxonomy.Classify(text),
		Countries:       countries,
		CountryMentions: mentions,
		AttackMethod:    a.attribution.Classify(text),
		KeywordCounts:   a.taxonomy.KeywordIncidence(text),
	}
}

// AnalyzeArticle builds the analysis text for an article and stores the
// result on it
func (a *Analyzer) AnalyzeArticle(article *model.Article) {
	article.Analysis = a.Analyze(BuildText(article.Title, article.Snippet, article.FullContent))
}
