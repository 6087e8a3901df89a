package model

import "time"

// Results is the persisted outcome of one analysis run.
// The JSON layout is shared by results.json and `arbitr report`.
type Results struct {
	Articles   []Article `json:"articles"`
	TotalCount int       `json:"total_count"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewResults wraps articles with their count and a timestamp
func NewResults(articles []Article, now time.Time) Results {
	if articles == nil {
		articles = []Article{}
	}
	return Results{
		Articles:   articles,
		TotalCount: len(articles),
		Timestamp:  now,
	}
}

// UnknownArticles returns the articles attributed to neither side
func (r Results) UnknownArticles() []Article {
	var out []Article
	for _, a := range r.Articles {
		if a.AttackMethod != AttackDirect && a.AttackMethod != AttackProxy {
			out = append(out, a)
		}
	}
	return out
}
