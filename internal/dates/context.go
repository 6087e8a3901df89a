package dates

import (
	"fmt"
	"strings"
)

// Context tells the normalizer where a raw date string came from
type Context int

const (
	// SearchIndex is the date text shown next to a search result ("3 days ago")
	SearchIndex Context = iota
	// Meta is a metadata attribute value (meta tags, time[datetime], feed fields)
	Meta
	// Body is the visible body text of an article
	Body
)

func (c Context) String() string {
	switch c {
	case SearchIndex:
		return "search"
	case Meta:
		return "meta"
	case Body:
		return "body"
	default:
		return "unknown"
	}
}

// ParseContext parses a context name as printed by String
func ParseContext(s string) (Context, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "search", "search_index", "index":
		return SearchIndex, nil
	case "meta", "metadata":
		return Meta, nil
	case "body", "text":
		return Body, nil
	default:
		return 0, fmt.Errorf("unknown date context: %q (supported: search, meta, body)", s)
	}
}
