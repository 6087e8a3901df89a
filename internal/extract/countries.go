package extract

import (
	"sort"
	"strings"
	"unicode"
)

// CountryRegistry recognizes country tokens in text and folds aliases into
// canonical display names. It is read-only after construction.
type CountryRegistry struct {
	tokens    []string          // longest first, ties alphabetical
	canonical map[string]string // token or alias -> canonical name
	aliasKeys []string          // canonical keys for substring fallback, longest first
}

// NewCountryRegistry builds a registry. Tokens and alias keys are
// lower-cased; canonical names are kept as given.
func NewCountryRegistry(tokens []string, canonical map[string]string) *CountryRegistry {
	r := &CountryRegistry{canonical: make(map[string]string, len(canonical))}

	for k, v := range canonical {
		r.canonical[strings.ToLower(strings.TrimSpace(k))] = v
	}
	for k := range r.canonical {
		r.aliasKeys = append(r.aliasKeys, k)
	}
	sortLongestFirst(r.aliasKeys)

	seen := make(map[string]bool)
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		r.tokens = append(r.tokens, tok)
	}
	sortLongestFirst(r.tokens)

	return r
}

// DefaultCountryRegistry returns the built-in European registry.
// "russia" is not a token so that "russian" never yields a country.
func DefaultCountryRegistry() *CountryRegistry {
	return NewCountryRegistry(defaultCountryTokens, defaultCountryNames)
}

// Tokens returns the recognized tokens in matching order
func (r *CountryRegistry) Tokens() []string {
	return append([]string(nil), r.tokens...)
}

// Normalize maps a token to its canonical name: exact lookup, then the
// longest alias key contained in the token, then title case.
func (r *CountryRegistry) Normalize(token string) string {
	lower := strings.ToLower(strings.TrimSpace(token))
	if name, ok := r.canonical[lower]; ok {
		return name
	}

	for _, key := range r.aliasKeys {
		if strings.Contains(lower, key) {
			return r.canonical[key]
		}
	}

	return titleCase(lower)
}

// Extract finds word-bounded country tokens in text and counts mentions per
// canonical name. Longer tokens are matched first and claim their span, so
// "great britain" is one mention and not a second one for "britain".
func (r *CountryRegistry) Extract(text string) ([]string, map[string]int) {
	countries := []string{}
	mentions := make(map[string]int)
	if text == "" {
		return countries, mentions
	}

	lower := strings.ToLower(text)
	claimed := make([]bool, len(lower))

	for _, tok := range r.tokens {
		count := 0
		for _, start := range boundedMatches(lower, tok) {
			end := start + len(tok)
			if spanClaimed(claimed, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				claimed[i] = true
			}
			count++
		}
		if count == 0 {
			continue
		}

		name := r.Normalize(tok)
		if _, ok := mentions[name]; !ok {
			countries = append(countries, name)
		}
		mentions[name] += count
	}

	return countries, mentions
}

func spanClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

func sortLongestFirst(s []string) {
	sort.Slice(s, func(i, j int) bool {
		if len(s[i]) != len(s[j]) {
			return len(s[i]) > len(s[j])
		}
		return s[i] < s[j]
	})
}

// titleCase upper-cases the first letter of every word
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	startOfWord := true
	for _, r := range s {
		if startOfWord && unicode.IsLetter(r) {
			r = unicode.ToUpper(r)
		}
		startOfWord = !unicode.IsLetter(r)
		b.WriteRune(r)
	}

	return b.String()
}

var defaultCountryTokens = []string{
	"ukraine", "poland", "germany", "france", "uk", "united kingdom", "great britain",
	"england", "britain", "estonia", "latvia", "lithuania", "czech", "czechia",
	"czech republic", "slovakia", "romania", "bulgaria", "finland", "sweden", "norway",
	"denmark", "netherlands", "belgium", "spain", "luxembourg", "hungary", "italy",
	"greece", "portugal", "moldova", "austria", "switzerland",
}

var defaultCountryNames = map[string]string{
	"ukraine":        "Ukraine",
	"poland":         "Poland",
	"germany":        "Germany",
	"france":         "France",
	"uk":             "United Kingdom",
	"united kingdom": "United Kingdom",
	"great britain":  "United Kingdom",
	"gb":             "United Kingdom",
	"england":        "United Kingdom",
	"britain":        "United Kingdom",
	"estonia":        "Estonia",
	"latvia":         "Latvia",
	"lithuania":      "Lithuania",
	"czech":          "Czech Republic",
	"czechia":        "Czech Republic",
	"czech republic": "Czech Republic",
	"slovakia":       "Slovakia",
	"romania":        "Romania",
	"bulgaria":       "Bulgaria",
	"finland":        "Finland",
	"sweden":         "Sweden",
	"norway":         "Norway",
	"denmark":        "Denmark",
	"netherlands":    "Netherlands",
	"belgium":        "Belgium",
	"spain":          "Spain",
	"luxembourg":     "Luxembourg",
	"hungary":        "Hungary",
	"italy":          "Italy",
	"greece":         "Greece",
	"portugal":       "Portugal",
	"moldova":        "Moldova",
	"austria":        "Austria",
	"switzerland":    "Switzerland",
}
