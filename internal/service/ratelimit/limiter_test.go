package ratelimit

import (
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	l := New()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 1) {
			t.Fatalf("call %d should pass within burst", i)
		}
	}
	if l.Allow("k", 3, 1) {
		t.Fatal("burst exhausted, call should be rejected")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("k", 1, 0.5) {
		t.Fatal("first call should pass")
	}
	if l.Allow("k", 1, 0.5) {
		t.Fatal("empty bucket should reject")
	}

	now = now.Add(2 * time.Second) // refills one token at 0.5/s
	if !l.Allow("k", 1, 0.5) {
		t.Fatal("refilled token should pass")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatal("key a should start full")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatal("key b should start full")
	}
	if l.Allow("a", 1, 0) {
		t.Fatal("key a should be empty now")
	}
}
