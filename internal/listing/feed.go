package listing

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"

	"github.com/0ne-nine9/arbitr/internal/dates"
	"github.com/0ne-nine9/arbitr/internal/model"
)

func (l *Loader) parseFeed(data []byte) ([]model.Article, error) {
	parser := gofeed.NewParser()
	feed, err := parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	now := l.now()
	articles := make([]model.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		a := l.convertFeedItem(item, now)
		if a.URL == "" && a.Title == "" {
			continue
		}
		if a.Source == "" {
			a.Source = feed.Title
		}
		articles = append(articles, a)
	}
	return articles, nil
}

func (l *Loader) convertFeedItem(item *gofeed.Item, now time.Time) model.Article {
	link := item.Link
	if link == "" && len(item.Links) > 0 {
		link = item.Links[0]
	}

	description := item.Description
	if description == "" {
		description = item.Content
	}

	a := model.Article{
		Title:   strings.TrimSpace(stripHTML(item.Title)),
		URL:     strings.TrimSpace(link),
		Snippet: stripHTML(description),
	}

	raw := item.Published
	if raw == "" {
		raw = item.Updated
	}
	a.DateText = strings.TrimSpace(raw)

	// The feed's own parse is tried first, then the raw text
	parsed := item.PublishedParsed
	if parsed == nil {
		parsed = item.UpdatedParsed
	}
	if parsed != nil {
		a.Date = l.normalizer.Normalize(parsed.Format(dates.Layout), dates.Meta, now)
	}
	if a.Date.IsZero() {
		a.Date = l.normalizer.Normalize(a.DateText, dates.Meta, now)
	}
	if !a.Date.IsZero() {
		a.DateSource = dates.Meta.String()
	}

	return a
}

// stripHTML returns the visible text of an HTML fragment with whitespace
// collapsed
func stripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				skip++
			case "br", "p", "div", "li":
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "p", "div", "li":
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}
