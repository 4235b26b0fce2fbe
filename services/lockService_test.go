package services

import (
	"context"
	"testing"
	"time"
)

func TestAcquireAndRelease(t *testing.T) {
	store := newMemStore()
	locks := NewLockService(store)
	ctx := context.Background()

	ok, err := locks.Acquire(ctx, "table:1", "holder-a", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected first acquire to succeed")
	}

	locked, err := locks.IsLocked(ctx, "table:1")
	if err != nil {
		t.Fatal(err)
	}
	if !locked {
		t.Fatal("expected resource to be locked")
	}

	ok, err = locks.Acquire(ctx, "table:1", "holder-b", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected second acquire on a held lock to fail")
	}

	if released := locks.Release(ctx, "table:1", "holder-b"); released {
		t.Fatal("holder-b must not release holder-a's lock")
	}
	if released := locks.Release(ctx, "table:1", "holder-a"); !released {
		t.Fatal("expected holder-a release to succeed")
	}

	ok, err = locks.Acquire(ctx, "table:1", "holder-b", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected acquire after release to succeed")
	}
}

func TestExpiredLockTakeover(t *testing.T) {
	store := newMemStore()
	locks := NewLockService(store)
	ctx := context.Background()

	ok, err := locks.Acquire(ctx, "area:patio", "holder-x", 30*time.Millisecond)
	if err != nil || !ok {
		t.Fatalf("acquire failed: ok=%v err=%v", ok, err)
	}

	// Before the TTL elapses the takeover must not happen.
	ok, err = locks.Acquire(ctx, "area:patio", "holder-y", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("takeover before expiry must fail")
	}

	time.Sleep(50 * time.Millisecond)

	ok, err = locks.Acquire(ctx, "area:patio", "holder-y", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected takeover of expired lock to succeed")
	}

	lock, err := store.Get(ctx, "area:patio")
	if err != nil {
		t.Fatal(err)
	}
	if lock == nil || lock.Holder != "holder-y" {
		t.Fatalf("expected holder-y to own the lock, got %+v", lock)
	}
}

func TestCleanupExpired(t *testing.T) {
	store := newMemStore()
	locks := NewLockService(store)
	ctx := context.Background()

	for _, resource := range []string{"a", "b", "c"} {
		if ok, _ := locks.Acquire(ctx, resource, "crashed-holder", 10*time.Millisecond); !ok {
			t.Fatalf("seeding lock %s failed", resource)
		}
	}
	if ok, _ := locks.Acquire(ctx, "live", "live-holder", time.Minute); !ok {
		t.Fatal("seeding live lock failed")
	}

	time.Sleep(20 * time.Millisecond)

	count, err := locks.CleanupExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("expected 3 expired locks removed, got %d", count)
	}
	locked, _ := locks.IsLocked(ctx, "live")
	if !locked {
		t.Fatal("live lock must survive cleanup")
	}
}

func TestHolderIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewHolderID()
		if seen[id] {
			t.Fatalf("duplicate holder id %s", id)
		}
		seen[id] = true
	}
}
