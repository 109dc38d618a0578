package services

import (
	"testing"
	"time"
)

func TestSessionGate_FirstRequestAdmitted(t *testing.T) {
	gate := NewSessionGate(10 * time.Second)

	if err := gate.Admit("1.2.3.4"); err != nil {
		t.Fatalf("First request should be admitted: %v", err)
	}
	if count := gate.RequestCount("1.2.3.4"); count != 1 {
		t.Errorf("Expected request count 1, got %d", count)
	}
}

func TestSessionGate_ThrottlesWithinCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gate := NewSessionGate(10 * time.Second)
	gate.now = func() time.Time { return now }

	if err := gate.Admit("a"); err != nil {
		t.Fatal(err)
	}

	now = now.Add(4 * time.Second)
	err := gate.Admit("a")
	if err == nil {
		t.Fatal("Request 4s after the last should be throttled")
	}

	advErr, ok := AsAdvisorError(err)
	if !ok || advErr.Code != CodeThrottled {
		t.Fatalf("Expected throttled AdvisorError, got %v", err)
	}
	if advErr.RetryAfter != 6*time.Second {
		t.Errorf("Expected 6s remaining, got %v", advErr.RetryAfter)
	}
}

func TestSessionGate_ThrottleDoesNotExtendCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gate := NewSessionGate(10 * time.Second)
	gate.now = func() time.Time { return now }

	if err := gate.Admit("a"); err != nil {
		t.Fatal(err)
	}

	// Hammering during the cooldown must not move lastRequestAt.
	for i := 0; i < 5; i++ {
		now = now.Add(1 * time.Second)
		if err := gate.Admit("a"); err == nil {
			t.Fatalf("Request at +%ds should be throttled", i+1)
		}
	}
	if count := gate.RequestCount("a"); count != 1 {
		t.Errorf("Throttled requests must not count, got %d", count)
	}

	// 10s after the ORIGINAL admission the gate opens, despite the hammering.
	now = now.Add(5 * time.Second)
	if err := gate.Admit("a"); err != nil {
		t.Fatalf("Request 10s after last admission should pass: %v", err)
	}
	if count := gate.RequestCount("a"); count != 2 {
		t.Errorf("Expected request count 2, got %d", count)
	}
}

func TestSessionGate_IdentitiesAreIndependent(t *testing.T) {
	gate := NewSessionGate(10 * time.Second)

	if err := gate.Admit("a"); err != nil {
		t.Fatal(err)
	}
	if err := gate.Admit("b"); err != nil {
		t.Errorf("Identity b should not share a's cooldown: %v", err)
	}
}

func TestSessionGate_SweepsIdleRecords(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gate := NewSessionGate(10 * time.Second)
	gate.now = func() time.Time { return now }

	if err := gate.Admit("a"); err != nil {
		t.Fatal(err)
	}

	// Any invocation more than an hour later sweeps the stale record.
	now = now.Add(61 * time.Minute)
	if err := gate.Admit("b"); err != nil {
		t.Fatal(err)
	}

	if count := gate.RequestCount("a"); count != 0 {
		t.Errorf("Idle record should have been swept, got count %d", count)
	}
}
