package extract

import (
	"strings"

	"github.com/0ne-nine9/arbitr/internal/model"
)

// AttributionClassifier weighs state-actor terms against proxy terms
type AttributionClassifier struct {
	stateActor []string
	proxy      []string
}

// NewAttributionClassifier creates a classifier from two lexicons.
// The lexicons should not share terms.
func NewAttributionClassifier(stateActor, proxy []string) *AttributionClassifier {
	return &AttributionClassifier{
		stateActor: lowerAll(stateActor),
		proxy:      lowerAll(proxy),
	}
}

// DefaultAttributionClassifier returns the built-in lexicons
func DefaultAttributionClassifier() *AttributionClassifier {
	return NewAttributionClassifier(stateActorTerms, proxyTerms)
}

// Scores returns how many terms of each lexicon text contains
func (c *AttributionClassifier) Scores(text string) (direct, proxy int) {
	lower := strings.ToLower(text)
	return containedTerms(lower, c.stateActor), containedTerms(lower, c.proxy)
}

// Classify returns direct or proxy when that side strictly outscores the
// other, and unknown on any tie
func (c *AttributionClassifier) Classify(text string) model.AttackMethod {
	direct, proxy := c.Scores(text)
	switch {
	case direct > proxy:
		return model.AttackDirect
	case proxy > direct:
		return model.AttackProxy
	default:
		return model.AttackUnknown
	}
}

func containedTerms(text string, terms []string) int {
	if text == "" {
		return 0
	}

	score := 0
	for _, term := range terms {
		if strings.Contains(text, term) {
			score++
		}
	}
	return score
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

var stateActorTerms = []string{"gru", "svr", "fsb", "russian intelligence"}

var proxyTerms = []string{
	"hacker group", "cybercriminal", "activist", "drug", "criminal group", "criminals",
	"separatist", "militia", "drug dealer", "drug lord", "gang", "gangs", "recruit",
	"traitor", "criminal", "felon", "extremist", "extremists", "extremist group",
	"extremist groups", "ultranationalist", "ultranationalists", "ultranationalist group",
	"ultranationalist groups",
}
