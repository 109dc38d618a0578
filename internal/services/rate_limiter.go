package services

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// QuotaWindow is the trailing duration the request quota is counted over.
const QuotaWindow = 1 * time.Hour

// QuotaStore enforces the global sliding-window request quota per client
// identity. Implementations must make check-then-consume a single atomic
// step so concurrent callers can never exceed the quota.
type QuotaStore interface {
	// CheckAndConsume admits the request and records the current instant,
	// or returns a rate_limit_exceeded AdvisorError. Rejection records
	// nothing.
	CheckAndConsume(ctx context.Context, identity string) error

	// Usage returns the identity's consumed count within the current
	// window and the configured limit. Read-only.
	Usage(ctx context.Context, identity string) (used, limit int)
}

// MemoryQuotaStore is the default in-process QuotaStore. All state is
// disposable; a restart resets every window.
type MemoryQuotaStore struct {
	mu      sync.Mutex
	windows map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

// NewMemoryQuotaStore creates an in-memory sliding-window quota store.
func NewMemoryQuotaStore(limit int, window time.Duration) *MemoryQuotaStore {
	return &MemoryQuotaStore{
		windows: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// CheckAndConsume implements QuotaStore.
func (s *MemoryQuotaStore) CheckAndConsume(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	instants := s.pruneLocked(identity, now)
	if len(instants) >= s.limit {
		// The slot frees up when the oldest in-window instant ages out.
		retryAfter := s.window - now.Sub(instants[0])
		return newRateLimitError(retryAfter)
	}

	s.windows[identity] = append(instants, now)
	return nil
}

// Usage implements QuotaStore.
func (s *MemoryQuotaStore) Usage(_ context.Context, identity string) (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pruneLocked(identity, s.now())), s.limit
}

// pruneLocked drops instants that fell out of the trailing window.
// Caller must hold s.mu.
func (s *MemoryQuotaStore) pruneLocked(identity string, now time.Time) []time.Time {
	instants := s.windows[identity]
	cutoff := now.Add(-s.window)

	kept := instants[:0]
	for _, t := range instants {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) == 0 {
		delete(s.windows, identity)
		return nil
	}
	s.windows[identity] = kept
	return kept
}

// sweepLocked evicts identities with no requests inside the window.
// Caller must hold s.mu.
func (s *MemoryQuotaStore) sweepLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	for identity, instants := range s.windows {
		if len(instants) == 0 || !instants[len(instants)-1].After(cutoff) {
			delete(s.windows, identity)
		}
	}
}

// RedisQuotaStore is a Redis sorted-set sliding window for multi-instance
// deployments. Same contract as MemoryQuotaStore; selected by REDIS_URL.
type RedisQuotaStore struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// NewRedisQuotaStore creates a Redis-backed sliding-window quota store.
func NewRedisQuotaStore(client *redis.Client, limit int, window time.Duration) *RedisQuotaStore {
	return &RedisQuotaStore{
		client: client,
		limit:  limit,
		window: window,
	}
}

func (s *RedisQuotaStore) key(identity string) string {
	return "advisor_quota:" + identity
}

// quotaAdmitScript prunes, counts, and conditionally consumes in one server-side
// step so concurrent callers (or instances) can never admit past the limit.
// Returns {1} when admitted, {0, oldestScore} when the window is full.
var quotaAdmitScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, ARGV[1])
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[2]) then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  return {0, oldest[2]}
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return {1}
`)

// CheckAndConsume implements QuotaStore. Redis errors fail open: a broken
// quota backend must not take the advisor down with it.
func (s *RedisQuotaStore) CheckAndConsume(ctx context.Context, identity string) error {
	now := time.Now()
	windowStart := now.Add(-s.window)

	reply, err := quotaAdmitScript.Run(ctx, s.client, []string{s.key(identity)},
		formatScore(windowStart),
		s.limit,
		now.UnixNano(),
		s.window.Milliseconds(),
	).Result()
	if err != nil {
		log.Printf("⚠️  [RATE-LIMIT] Redis check failed for %s: %v (failing open)", identity, err)
		return nil
	}

	return s.admitDecision(reply, now)
}

// admitDecision interprets a quotaAdmitScript reply. An unrecognized reply
// shape fails open like any other Redis fault.
func (s *RedisQuotaStore) admitDecision(reply any, now time.Time) error {
	fields, ok := reply.([]interface{})
	if !ok || len(fields) == 0 {
		log.Printf("⚠️  [RATE-LIMIT] Unexpected quota script reply %v (failing open)", reply)
		return nil
	}

	if admitted, _ := fields[0].(int64); admitted == 1 {
		return nil
	}

	// The slot frees up when the oldest in-window instant ages out.
	retryAfter := s.window
	if len(fields) > 1 {
		if score, ok := fields[1].(string); ok {
			if ns, err := strconv.ParseInt(score, 10, 64); err == nil {
				retryAfter = s.window - now.Sub(time.Unix(0, ns))
			}
		}
	}
	return newRateLimitError(retryAfter)
}

// Usage implements QuotaStore.
func (s *RedisQuotaStore) Usage(ctx context.Context, identity string) (int, int) {
	key := s.key(identity)
	windowStart := time.Now().Add(-s.window)

	s.client.ZRemRangeByScore(ctx, key, "0", formatScore(windowStart))
	count, err := s.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, s.limit
	}
	return int(count), s.limit
}

// formatScore renders a sorted-set score bound for ZRemRangeByScore.
func formatScore(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}
