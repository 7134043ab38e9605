package limiters

import (
	"context"
	"sync"
	"testing"
	"time"
)

func newTestMFALimiter(t *testing.T, cfg MFAConfig) (*MFAFailureLimiter, func(d time.Duration)) {
	t.Helper()
	limiter, mr := newTestLimiter(t, LockoutConfig{})
	return NewMFAFailureLimiter(limiter.redis, cfg), mr.FastForward
}

func TestMFARecordFailureCounts(t *testing.T) {
	limiter, _ := newTestMFALimiter(t, MFAConfig{Threshold: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, err := limiter.RecordFailure(ctx, "t1", "u1", "authenticator")
		if err != nil {
			t.Fatalf("RecordFailure #%d: %v", i, err)
		}
		if count != i {
			t.Fatalf("count after %d failures = %d", i, count)
		}
	}

	locked, err := limiter.Locked(ctx, "t1", "u1", "authenticator")
	if err != nil {
		t.Fatalf("Locked: %v", err)
	}
	if !locked {
		t.Fatal("expected locked at threshold")
	}
}

func TestMFACountersAreKeyedPerMethod(t *testing.T) {
	limiter, _ := newTestMFALimiter(t, MFAConfig{Threshold: 2, Window: time.Minute})
	ctx := context.Background()

	if _, err := limiter.RecordFailure(ctx, "t1", "u1", "sms"); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}

	count, err := limiter.RecordFailure(ctx, "t1", "u1", "email")
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if count != 1 {
		t.Fatalf("email count = %d, want 1", count)
	}

	count, err = limiter.RecordFailure(ctx, "t2", "u1", "sms")
	if err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if count != 1 {
		t.Fatalf("tenant t2 count = %d, want 1", count)
	}
}

func TestMFAWindowExpires(t *testing.T) {
	limiter, fastForward := newTestMFALimiter(t, MFAConfig{Threshold: 2, Window: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := limiter.RecordFailure(ctx, "t1", "u1", "sms"); err != nil {
			t.Fatalf("RecordFailure: %v", err)
		}
	}

	fastForward(2 * time.Minute)

	locked, err := limiter.Locked(ctx, "t1", "u1", "sms")
	if err != nil {
		t.Fatalf("Locked: %v", err)
	}
	if locked {
		t.Fatal("expected lock to expire with the window")
	}
}

func TestMFAResetClearsCounter(t *testing.T) {
	limiter, _ := newTestMFALimiter(t, MFAConfig{Threshold: 1, Window: time.Minute})
	ctx := context.Background()

	if _, err := limiter.RecordFailure(ctx, "t1", "u1", "sms"); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}
	if err := limiter.Reset(ctx, "t1", "u1", "sms"); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	locked, err := limiter.Locked(ctx, "t1", "u1", "sms")
	if err != nil {
		t.Fatalf("Locked: %v", err)
	}
	if locked {
		t.Fatal("expected counter cleared after reset")
	}
}

func TestMFAConcurrentFailuresLoseNoIncrements(t *testing.T) {
	limiter, _ := newTestMFALimiter(t, MFAConfig{Threshold: 5, Window: time.Minute})
	ctx := context.Background()

	const goroutines = 50

	counts := make(chan int, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			count, err := limiter.RecordFailure(ctx, "t1", "u1", "authenticator")
			if err != nil {
				t.Errorf("RecordFailure: %v", err)
				return
			}
			counts <- count
		}()
	}
	wg.Wait()
	close(counts)

	seen := make(map[int]bool, goroutines)
	max := 0
	for count := range counts {
		if seen[count] {
			t.Fatalf("count %d handed out twice", count)
		}
		seen[count] = true
		if count > max {
			max = count
		}
	}
	if max != goroutines {
		t.Fatalf("final count = %d, want %d", max, goroutines)
	}
}
