package extract

import (
	"strings"
)

// mainBodyShare is the leading share of content lines treated as main body
const mainBodyShare = 0.75

// BuildText assembles the lower-cased text handed to the classifiers.
// Without content it is title and snippet. With content it is the title
// followed by the filtered main body: the leading lines, minus very short
// lines and lines that look like links or paths.
func BuildText(title, snippet, content string) string {
	if content == "" {
		return strings.ToLower(title + " " + snippet)
	}

	lines := strings.Split(content, "\n")
	lines = lines[:int(float64(len(lines))*mainBodyShare)]

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 3 {
			continue
		}
		if strings.Contains(strings.ToLower(line), "http") || strings.Count(line, "/") > 3 {
			continue
		}
		kept = append(kept, line)
	}

	return strings.ToLower(title + " " + strings.Join(kept, " "))
}
