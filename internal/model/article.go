package model

import (
	"github.com/0ne-nine9/arbitr/internal/dates"
)

// Article is one reported incident taken from a search listing or feed
type Article struct {
	ID          string     `json:"id,omitempty"`           // ULID assigned when the article enters a run
	Title       string     `json:"title"`                  // Headline as listed
	URL         string     `json:"url"`                    // Canonical article link
	Snippet     string     `json:"snippet"`                // Listing snippet or feed description
	DateText    string     `json:"date_text,omitempty"`    // Raw date text shown next to the listing entry
	Date        dates.Date `json:"date"`                   // Normalized publication date (null when unknown)
	DateSource  string     `json:"date_source,omitempty"`  // Context that produced Date: search, meta or body
	FullContent string     `json:"full_content,omitempty"` // Main body text extracted from the page
	Source      string     `json:"source,omitempty"`       // Listing file or feed the article came from
	FetchMeta   *FetchMeta `json:"fetch_meta,omitempty"`   // HTTP metadata when the page was fetched
	Error       string     `json:"error,omitempty"`        // Enrichment failure, kept for the record

	Analysis
}

// HasContent reports whether a main body was extracted for the article
func (a *Article) HasContent() bool {
	return a.FullContent != ""
}

// FetchMeta contains HTTP metadata from fetching an article page
type FetchMeta struct {
	StatusCode   int    `json:"status_code"`
	ContentType  string `json:"content_type,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	ETag         string `json:"etag,omitempty"`
	FromCache    bool   `json:"from_cache,omitempty"`
}
