package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWithLockMutualExclusion(t *testing.T) {
	store := newMemStore()
	locks := NewLockService(store)
	ctx := context.Background()

	const workers = 50
	opts := LockOptions{TTL: time.Second, BaseDelay: time.Millisecond, MaxRetries: 500, GrowthFactor: 1.05}

	inside := 0
	counter := 0
	var wg sync.WaitGroup
	var failures int64
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locks.WithLock(ctx, "shared", opts, func(ctx context.Context) error {
				inside++
				if inside != 1 {
					t.Error("two goroutines inside the critical section")
				}
				counter++
				inside--
				return nil
			})
			if err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if failures > 0 {
		t.Fatalf("%d workers exhausted their retries", failures)
	}
	if counter != workers {
		t.Fatalf("expected counter %d, got %d", workers, counter)
	}
}

func TestWithLockReleasesOnError(t *testing.T) {
	store := newMemStore()
	locks := NewLockService(store)
	ctx := context.Background()

	wantErr := errors.New("work failed")
	err := locks.WithLock(ctx, "res", LockOptions{}, func(ctx context.Context) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected work error back, got %v", err)
	}

	locked, _ := locks.IsLocked(ctx, "res")
	if locked {
		t.Fatal("lock must be released after the work errors")
	}
}

func TestWithLockExhaustion(t *testing.T) {
	store := newMemStore()
	locks := NewLockService(store)
	ctx := context.Background()

	if ok, _ := locks.Acquire(ctx, "busy", "other", time.Minute); !ok {
		t.Fatal("seeding failed")
	}

	err := locks.WithLock(ctx, "busy", LockOptions{BaseDelay: time.Millisecond, MaxRetries: 2}, func(ctx context.Context) error {
		t.Fatal("work must not run without the lock")
		return nil
	})
	var exhausted *ErrLockExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ErrLockExhausted, got %v", err)
	}
	if exhausted.Resource != "busy" || exhausted.Attempts != 3 {
		t.Fatalf("unexpected exhaustion details: %+v", exhausted)
	}
}

func TestReservationLockKeyGranularity(t *testing.T) {
	// Same tables in a different order must map to the same resource.
	a := ReservationLockKey("patio", "2025-01-01", "19:00", []string{"T2", "T1"})
	b := ReservationLockKey("patio", "2025-01-01", "19:00", []string{"T1", "T2"})
	if a != b {
		t.Fatalf("table order must not change the key: %s vs %s", a, b)
	}

	// Disjoint table sets must not contend.
	c := ReservationLockKey("patio", "2025-01-01", "19:00", []string{"T3"})
	if a == c {
		t.Fatal("disjoint table sets must have distinct keys")
	}

	// A different slot is a different resource.
	d := ReservationLockKey("patio", "2025-01-01", "20:00", []string{"T1", "T2"})
	if a == d {
		t.Fatal("different time slots must have distinct keys")
	}
}

func TestWithLockScenarioTakeoverAfterTTL(t *testing.T) {
	store := newMemStore()
	locks := NewLockService(store)
	ctx := context.Background()
	key := ReservationLockKey("A", "2025-01-01", "19:00", []string{"T1", "T2"})

	if ok, _ := locks.Acquire(ctx, key, "holder-x", 200*time.Millisecond); !ok {
		t.Fatal("holder-x acquire failed")
	}

	// Early attempt by holder-y fails.
	if ok, _ := locks.Acquire(ctx, key, "holder-y", time.Minute); ok {
		t.Fatal("holder-y must not acquire while x's lock is live")
	}

	// After the TTL has passed the takeover succeeds.
	time.Sleep(220 * time.Millisecond)
	if ok, _ := locks.Acquire(ctx, key, "holder-y", time.Minute); !ok {
		t.Fatal("holder-y takeover after TTL expiry failed")
	}
}
