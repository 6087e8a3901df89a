package dates

import (
	"regexp"
	"time"
)

const labelPrefix = `(?i)\b(?:published|posted|updated|date|on|by)\s*:?\s*`

// labelledPatterns find a date introduced by a label such as "Published:"
var labelledPatterns = []*regexp.Regexp{
	regexp.MustCompile(labelPrefix + `([a-z]+\s+\d{1,2},?\s+\d{4})`),
	regexp.MustCompile(labelPrefix + `(\d{1,2}\s+[a-z]+\s+\d{4})`),
	regexp.MustCompile(labelPrefix + `(\d{4}[-/]\d{1,2}[-/]\d{1,2})`),
	regexp.MustCompile(labelPrefix + `(\d{1,2}[-/]\d{1,2}[-/]\d{4})`),
}

// candidatePattern finds unlabelled date-like substrings
var candidatePattern = regexp.MustCompile(
	`(?i)\b([a-z]+\s+\d{1,2},?\s+\d{4}|\d{1,2}\s+[a-z]+\s+\d{4}|\d{4}[-/]\d{1,2}[-/]\d{1,2})\b`,
)

// labelled searches the leading lines of the body for a labelled date
func (n *Normalizer) labelled(raw string, _ time.Time) (Date, bool) {
	for _, line := range leadingLines(raw, n.scanLines) {
		for _, re := range labelledPatterns {
			m := re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if d, ok := n.absolute(m[1]); ok {
				return d, true
			}
		}
	}

	return Date{}, false
}

// unlabelled tries the first few date-like substrings at the head of the
// body. Only dates inside the narrower body window are accepted.
func (n *Normalizer) unlabelled(raw string, _ time.Time) (Date, bool) {
	head := leadingRunes(raw, n.scanChars)

	for _, m := range candidatePattern.FindAllStringSubmatch(head, n.maxCandidates) {
		if d, ok := n.absolute(m[1]); ok && n.bodyWindow.Contains(d) {
			return d, true
		}
	}

	return Date{}, false
}

func leadingLines(s string, limit int) []string {
	lines := make([]string, 0, limit)
	start := 0
	for i := 0; i < len(s) && len(lines) < limit; i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if len(lines) < limit && start <= len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func leadingRunes(s string, limit int) string {
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
