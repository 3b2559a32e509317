package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesBucket(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("k", 3, 0.001) {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if l.Allow("k", 3, 0.001) {
		t.Error("bucket should be empty")
	}
	// a different key has its own bucket
	if !l.Allow("other", 1, 0.001) {
		t.Error("independent key should be allowed")
	}
}

func TestWaitHonorsContext(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 0.001) {
		t.Fatal("first call should be allowed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, "k", 1, 0.001); err == nil {
		t.Error("Wait should fail once the context expires")
	}
}

func TestWaitRefills(t *testing.T) {
	l := New()
	if !l.Allow("k", 1, 50) {
		t.Fatal("first call should be allowed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.Wait(ctx, "k", 1, 50); err != nil {
		t.Errorf("Wait should succeed after refill: %v", err)
	}
}
