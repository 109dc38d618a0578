package services

import (
	"log"
	"strconv"
	"strings"
	"time"

	"gemora/internal/models"

	cache "github.com/patrickmn/go-cache"
)

// CacheEntry is a previously produced advisor response.
type CacheEntry struct {
	ResponseText string
	Candidates   []models.CandidateItem
	StoredAt     time.Time
}

// ResponseCache is a short-TTL cache of generated responses, keyed on
// normalized query text plus the number of catalog matches. The same text
// with 0 matches and with 3 matches caches separately.
type ResponseCache struct {
	cache      *cache.Cache
	sweepBound int
}

// NewResponseCache creates a response cache. Expiry is checked lazily on
// read; inserts past sweepBound trigger an eager sweep of expired entries
// (pure expiry, not LRU — overflow beyond the bound is tolerated).
func NewResponseCache(ttl time.Duration, sweepBound int) *ResponseCache {
	// Cleanup interval 0: no background janitor, eviction is on the
	// request path only.
	return &ResponseCache{
		cache:      cache.New(ttl, 0),
		sweepBound: sweepBound,
	}
}

// cacheKey normalizes the query text (case-folded, trimmed) and appends the
// candidate-count discriminator.
func cacheKey(text string, candidateCount int) string {
	return strings.ToLower(strings.TrimSpace(text)) + "|" + strconv.Itoa(candidateCount)
}

// Get returns the cached entry for the query, treating expired entries as
// misses.
func (c *ResponseCache) Get(text string, candidateCount int) (*CacheEntry, bool) {
	value, found := c.cache.Get(cacheKey(text, candidateCount))
	if !found {
		return nil, false
	}

	entry, ok := value.(*CacheEntry)
	if !ok {
		return nil, false
	}
	return entry, true
}

// Put stores a generated response, then sweeps expired entries if the cache
// grew past its bound.
func (c *ResponseCache) Put(text string, candidateCount int, entry *CacheEntry) {
	c.cache.Set(cacheKey(text, candidateCount), entry, cache.DefaultExpiration)

	if c.cache.ItemCount() > c.sweepBound {
		before := c.cache.ItemCount()
		c.cache.DeleteExpired()
		log.Printf("🧹 [CACHE] Sweep after insert: %d -> %d entries", before, c.cache.ItemCount())
	}
}

// Len returns the current entry count, expired entries included until swept.
func (c *ResponseCache) Len() int {
	return c.cache.ItemCount()
}
