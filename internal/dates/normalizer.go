// Package dates turns heterogeneous publication-date representations into
// canonical YYYY-MM-DD dates.
//
// Each source context has a fixed chain of strategies. The chain is walked in
// order and the first strategy that produces a date inside the validity
// window wins. A failed strategy is never an error; an exhausted chain yields
// the unset Date.
package dates

import (
	"strings"
	"time"
)

// FuzzyParser is a permissive natural-date parser tried ahead of the
// explicit pattern table. It reports false when it cannot parse raw.
type FuzzyParser interface {
	ParseFuzzy(raw string) (time.Time, bool)
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithFuzzyParser enables the fuzzy strategy
func WithFuzzyParser(p FuzzyParser) Option {
	return func(n *Normalizer) {
		n.fuzzy = p
	}
}

// WithWindow overrides the general validity window
func WithWindow(w Window) Option {
	return func(n *Normalizer) {
		n.window = w
	}
}

// WithBodyWindow overrides the window applied to unlabelled body-text dates
func WithBodyWindow(w Window) Option {
	return func(n *Normalizer) {
		n.bodyWindow = w
	}
}

// WithBodyScan overrides how much body text is scanned: the number of
// leading lines searched for labelled dates, the number of leading
// characters searched for unlabelled candidates, and how many candidates
// are tried.
func WithBodyScan(lines, chars, candidates int) Option {
	return func(n *Normalizer) {
		if lines > 0 {
			n.scanLines = lines
		}
		if chars > 0 {
			n.scanChars = chars
		}
		if candidates > 0 {
			n.maxCandidates = candidates
		}
	}
}

// Normalizer resolves raw date strings. It holds no mutable state and is
// safe for concurrent use.
type Normalizer struct {
	fuzzy         FuzzyParser
	window        Window
	bodyWindow    Window
	scanLines     int
	scanChars     int
	maxCandidates int
}

// NewNormalizer creates a normalizer with the default windows and scan limits
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		window:        DefaultWindow,
		bodyWindow:    DefaultBodyWindow,
		scanLines:     30,
		scanChars:     1000,
		maxCandidates: 5,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// attempt is one strategy of a chain
type attempt func(raw string, now time.Time) (Date, bool)

// Normalize resolves raw in the given context. now anchors relative phrases.
func (n *Normalizer) Normalize(raw string, c Context, now time.Time) Date {
	if strings.TrimSpace(raw) == "" {
		return Date{}
	}

	for _, try := range n.chain(c) {
		if d, ok := try(raw, now); ok && n.window.Contains(d) {
			return d
		}
	}

	return Date{}
}

// chain returns the strategies for a context in precedence order
func (n *Normalizer) chain(c Context) []attempt {
	switch c {
	case SearchIndex:
		return []attempt{n.relative, n.fuzzyAttempt, n.table}
	case Meta:
		return []attempt{n.fuzzyAttempt, n.table}
	case Body:
		return []attempt{n.labelled, n.unlabelled}
	default:
		return nil
	}
}

// absolute parses a standalone date string with the fuzzy parser and the
// pattern table
func (n *Normalizer) absolute(raw string) (Date, bool) {
	for _, try := range []attempt{n.fuzzyAttempt, n.table} {
		if d, ok := try(raw, time.Time{}); ok && n.window.Contains(d) {
			return d, true
		}
	}
	return Date{}, false
}

func (n *Normalizer) fuzzyAttempt(raw string, _ time.Time) (Date, bool) {
	if n.fuzzy == nil {
		return Date{}, false
	}

	t, ok := n.fuzzy.ParseFuzzy(raw)
	if !ok {
		return Date{}, false
	}

	return FromTime(t), true
}
