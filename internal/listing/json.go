package listing

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/0ne-nine9/arbitr/internal/dates"
	"github.com/0ne-nine9/arbitr/internal/model"
)

// rawEntry accepts the field names used by common search exporters
type rawEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	Description string `json:"description"`
	DateText    string `json:"date_text"`
	Date        string `json:"date"`
	DateSource  string `json:"date_source"`
	FullContent string `json:"full_content"`
	Source      string `json:"source"`
}

// document is the results layout, so a previous run's results.json can be
// re-analyzed
type document struct {
	Articles []rawEntry `json:"articles"`
}

func (l *Loader) parseJSON(data []byte) ([]model.Article, error) {
	trimmed := bytes.TrimSpace(data)

	var entries []rawEntry
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parse JSON listing: %w", err)
		}
		entries = doc.Articles
	} else if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("parse JSON listing: %w", err)
	}

	return l.fromEntries(entries), nil
}

func (l *Loader) parseJSONL(data []byte) ([]model.Article, error) {
	var entries []rawEntry

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), maxListingBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var e rawEntry
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return nil, fmt.Errorf("parse JSONL listing line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan JSONL listing: %w", err)
	}

	return l.fromEntries(entries), nil
}

func (l *Loader) fromEntries(entries []rawEntry) []model.Article {
	now := l.now()
	articles := make([]model.Article, 0, len(entries))
	for _, e := range entries {
		a := model.Article{
			ID:          e.ID,
			Title:       strings.TrimSpace(e.Title),
			URL:         strings.TrimSpace(firstNonEmpty(e.URL, e.Link)),
			Snippet:     strings.TrimSpace(firstNonEmpty(e.Snippet, e.Description)),
			DateText:    strings.TrimSpace(e.DateText),
			FullContent: strings.TrimSpace(e.FullContent),
			Source:      e.Source,
		}
		if a.URL == "" && a.Title == "" {
			continue
		}

		// A normalized date from an earlier run is kept as is
		if d, err := dates.Parse(e.Date); err == nil && !d.IsZero() {
			a.Date = d
			a.DateSource = e.DateSource
		} else if a.DateText != "" {
			if d := l.normalizer.Normalize(a.DateText, dates.SearchIndex, now); !d.IsZero() {
				a.Date = d
				a.DateSource = dates.SearchIndex.String()
			}
		}

		articles = append(articles, a)
	}
	return articles
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
