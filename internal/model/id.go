package model

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewArticleID returns a new ULID. IDs from one process sort in creation order.
func NewArticleID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Now(), idEntropy).String()
}

// EnsureIDs assigns IDs to articles that have none
func EnsureIDs(articles []Article) {
	for i := range articles {
		if articles[i].ID == "" {
			articles[i].ID = NewArticleID()
		}
	}
}
