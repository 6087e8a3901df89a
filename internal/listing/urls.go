package listing

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/0ne-nine9/arbitr/internal/model"
)

// parseURLList reads one URL per line, skipping blank lines and # comments.
// The articles carry only their URL until the pipeline fetches them.
func parseURLList(data []byte) ([]model.Article, error) {
	var articles []model.Article
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			articles = append(articles, model.Article{URL: line})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan URL list: %w", err)
	}

	return articles, nil
}
