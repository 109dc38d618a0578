package services

import (
	"sync"
	"time"
)

// sessionIdleTTL is how long a session record survives without requests
// before the lazy sweep removes it.
const sessionIdleTTL = 1 * time.Hour

// sessionRecord tracks one identity's pacing state.
// lastRequestAt is monotonically non-decreasing: a throttled request never
// touches it, so hammering cannot extend the cooldown.
type sessionRecord struct {
	lastRequestAt time.Time
	requestCount  int
}

// SessionGate enforces a minimum interval between successive admitted
// requests from the same identity. It is independent of the quota store and
// evaluated after it.
type SessionGate struct {
	mu          sync.Mutex
	sessions    map[string]*sessionRecord
	minInterval time.Duration
	now         func() time.Time
}

// NewSessionGate creates a session gate with the given cooldown.
func NewSessionGate(minInterval time.Duration) *SessionGate {
	return &SessionGate{
		sessions:    make(map[string]*sessionRecord),
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Admit admits the request or returns a throttled AdvisorError with the
// seconds remaining. Each invocation first sweeps records idle past the TTL,
// which bounds memory without a background scheduler.
func (g *SessionGate) Admit(identity string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	g.sweepLocked(now)

	record, ok := g.sessions[identity]
	if !ok {
		g.sessions[identity] = &sessionRecord{lastRequestAt: now, requestCount: 1}
		return nil
	}

	elapsed := now.Sub(record.lastRequestAt)
	if elapsed < g.minInterval {
		return newThrottledError(g.minInterval - elapsed)
	}

	record.lastRequestAt = now
	record.requestCount++
	return nil
}

// RequestCount returns how many requests the identity has had admitted since
// its record was created. Read-only.
func (g *SessionGate) RequestCount(identity string) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	if record, ok := g.sessions[identity]; ok {
		return record.requestCount
	}
	return 0
}

// sweepLocked drops records idle longer than the TTL. Caller must hold g.mu.
func (g *SessionGate) sweepLocked(now time.Time) {
	for identity, record := range g.sessions {
		if now.Sub(record.lastRequestAt) > sessionIdleTTL {
			delete(g.sessions, identity)
		}
	}
}
