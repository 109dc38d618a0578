package services

import (
	"fmt"
	"testing"
	"time"

	"gemora/internal/models"
)

func TestResponseCache_PutThenGet(t *testing.T) {
	cache := NewResponseCache(10*time.Minute, 100)

	entry := &CacheEntry{
		ResponseText: "Take a look at the Classic Burmese Ruby.",
		Candidates:   []models.CandidateItem{{ID: "1", DisplayName: "Classic Burmese Ruby", Category: "ruby"}},
		StoredAt:     time.Now(),
	}
	cache.Put("Show me rubies", 1, entry)

	got, found := cache.Get("Show me rubies", 1)
	if !found {
		t.Fatal("Expected cache hit")
	}
	if got.ResponseText != entry.ResponseText {
		t.Errorf("Expected stored response, got %q", got.ResponseText)
	}
}

func TestResponseCache_KeyIsNormalized(t *testing.T) {
	cache := NewResponseCache(10*time.Minute, 100)
	cache.Put("  Show Me RUBIES  ", 2, &CacheEntry{ResponseText: "ok"})

	if _, found := cache.Get("show me rubies", 2); !found {
		t.Error("Case and whitespace variants should share a key")
	}
}

func TestResponseCache_CandidateCountsNeverCollide(t *testing.T) {
	cache := NewResponseCache(10*time.Minute, 100)
	cache.Put("show me rubies", 0, &CacheEntry{ResponseText: "none found"})
	cache.Put("show me rubies", 3, &CacheEntry{ResponseText: "three found"})

	zero, _ := cache.Get("show me rubies", 0)
	three, _ := cache.Get("show me rubies", 3)
	if zero == nil || three == nil {
		t.Fatal("Both candidate counts should be cached")
	}
	if zero.ResponseText == three.ResponseText {
		t.Error("Different candidate counts must cache separately")
	}
}

func TestResponseCache_ExpiredEntryIsMiss(t *testing.T) {
	cache := NewResponseCache(10*time.Millisecond, 100)
	cache.Put("show me rubies", 0, &CacheEntry{ResponseText: "stale"})

	time.Sleep(30 * time.Millisecond)

	if _, found := cache.Get("show me rubies", 0); found {
		t.Error("Expired entry should be a miss")
	}
}

func TestResponseCache_SweepRemovesExpiredPastBound(t *testing.T) {
	cache := NewResponseCache(10*time.Millisecond, 5)

	for i := 0; i < 5; i++ {
		cache.Put(fmt.Sprintf("query %d", i), 0, &CacheEntry{ResponseText: "old"})
	}
	time.Sleep(30 * time.Millisecond)

	// This insert pushes the size past the bound and triggers the sweep.
	cache.Put("fresh query", 0, &CacheEntry{ResponseText: "fresh"})

	if got := cache.Len(); got != 1 {
		t.Errorf("Expected sweep to leave 1 entry, got %d", got)
	}
	if _, found := cache.Get("fresh query", 0); !found {
		t.Error("Fresh entry should survive the sweep")
	}
}
