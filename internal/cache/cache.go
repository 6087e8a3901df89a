// Package cache stores fetched article pages so repeated runs over the same
// listing do not refetch them.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

const pageKeyPrefix = "arbitr-page-v1-"

// PageKey generates the cache key for an article URL
func PageKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return pageKeyPrefix + hex.EncodeToString(hash[:])
}

// Page is a fetched article page as stored in the cache
type Page struct {
	URL          string    `json:"url"`
	FinalURL     string    `json:"final_url"`
	HTML         string    `json:"html"`
	StatusCode   int       `json:"status_code"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// GetPage looks up and decodes a cached page. Undecodable entries are dropped.
func GetPage(c Cache, url string) (*Page, bool) {
	key := PageKey(url)
	data, ok := c.Get(key)
	if !ok {
		return nil, false
	}

	var page Page
	if err := json.Unmarshal(data, &page); err != nil {
		_ = c.Delete(key)
		return nil, false
	}

	return &page, true
}

// PutPage encodes and stores a page under its request URL
func PutPage(c Cache, page *Page, ttl time.Duration) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("marshal page: %w", err)
	}
	return c.Set(PageKey(page.URL), data, ttl)
}
