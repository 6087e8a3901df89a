package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// metaDateSelectors are tried in order; every time[datetime] follows them
var metaDateSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[property="article:modified_time"]`,
	`meta[name="publishdate"]`,
	`meta[name="pubdate"]`,
	`meta[name="publicationdate"]`,
	`meta[name="date"]`,
	`meta[name="DC.date"]`,
	`meta[name="dcterms.date"]`,
	`meta[itemprop="datePublished"]`,
	`meta[itemprop="dateModified"]`,
}

const boilerplateSelector = "footer, nav, aside, header, .footer, .nav, .sidebar, .tags, .tag, " +
	".related, .share, .social, .comments, .author-box, .newsletter"

var contentSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	".article-content",
	".post-content",
	".entry-content",
	".article-body",
	".post-body",
	"#content",
	".content",
	`div[class*="article"]:not(.article-footer):not(.article-tags)`,
	`div[class*="content"]:not(.content-footer):not(.content-tags)`,
	`div[class*="post"]:not(.post-footer):not(.post-tags)`,
}

const fallbackSelector = `main, article, [role="main"], .main-content`

// noiseMarkers disqualify a content candidate whose class or id mentions them
var noiseMarkers = []string{
	"footer", "tag", "related", "share", "social", "comment", "author", "newsletter", "sidebar",
}

const (
	maxLinkDensity   = 0.3
	enoughBodyLength = 1000
)

// Page is what the pipeline needs from an article page
type Page struct {
	MetaDates []string // raw meta and time[datetime] values in precedence order
	Text      string   // main body text, one block per line
}

// ParsePage extracts date candidates and the main body text from HTML
func ParsePage(htmlContent string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	page := &Page{MetaDates: metaDates(doc)}

	doc.Find(boilerplateSelector).Remove()
	page.Text = mainText(doc)

	return page, nil
}

func metaDates(doc *goquery.Document) []string {
	var values []string
	for _, sel := range metaDateSelectors {
		if v := strings.TrimSpace(doc.Find(sel).First().AttrOr("content", "")); v != "" {
			values = append(values, v)
		}
	}
	doc.Find("time[datetime]").Each(func(_ int, s *goquery.Selection) {
		if v := strings.TrimSpace(s.AttrOr("datetime", "")); v != "" {
			values = append(values, v)
		}
	})
	return values
}

// mainText picks the longest acceptable content candidate, stopping early
// once one is long enough, and falls back to the main region or the whole
// body
func mainText(doc *goquery.Document) string {
	best := ""
	bestLen := 0

	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			if isNoise(s) {
				return
			}
			text := blockText(s)
			n := utf8.RuneCountInString(text)
			if n == 0 || float64(s.Find("a").Length())/float64(n) > maxLinkDensity {
				return
			}
			if n > bestLen {
				best, bestLen = text, n
			}
		})
		if bestLen > enoughBodyLength {
			return best
		}
	}

	fallback := doc.Find(fallbackSelector).First()
	if fallback.Length() == 0 {
		fallback = doc.Find("body")
	}
	if text := blockText(fallback); utf8.RuneCountInString(text) > bestLen {
		return text
	}
	return best
}

func isNoise(s *goquery.Selection) bool {
	marker := strings.ToLower(s.AttrOr("class", "") + " " + s.AttrOr("id", ""))
	for _, m := range noiseMarkers {
		if strings.Contains(marker, m) {
			return true
		}
	}
	return false
}

var blockElements = map[string]bool{
	"address": true, "article": true, "blockquote": true, "br": true, "dd": true,
	"div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"hr": true, "li": true, "main": true, "ol": true, "p": true, "pre": true,
	"section": true, "table": true, "td": true, "th": true, "tr": true, "ul": true,
}

var lineBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// blockText renders the visible text of a selection with one line per
// block element, skipping scripts and styles
func blockText(s *goquery.Selection) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "template", "svg":
				return
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(lineBreaks.Replace(n.Data))
		}

		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			buf.WriteByte('\n')
		}
	}

	for _, n := range s.Nodes {
		walk(n)
	}

	var lines []string
	for _, line := range strings.Split(buf.String(), "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
