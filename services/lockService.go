package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-restaurant-booking/models"
)

// LockService serializes access to named resources through the persisted
// lock registry. Acquisition is non-blocking: a held resource is reported as
// failure and the caller decides whether to back off and retry.
type LockService struct {
	store LockStore
	now   func() time.Time
}

func NewLockService(store LockStore) *LockService {
	return &LockService{store: store, now: time.Now}
}

// NewHolderID derives a holder identity from the process and the moment of
// acquisition, so two acquires from the same process never collide.
func NewHolderID() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s:%d:%d:%s", host, os.Getpid(), time.Now().UnixNano(), uuid.NewString()[:8])
}

// Acquire attempts to take the lock for resource. A live lock held by someone
// else yields (false, nil). An expired lock is taken over: the stale record
// is conditionally deleted and the create retried once. A duplicate-key
// race between two creators is contention, not an error.
func (s *LockService) Acquire(ctx context.Context, resource string, holder string, ttl time.Duration) (bool, error) {
	for attempt := 0; attempt < 2; attempt++ {
		now := s.now()
		lock := models.Lock{
			ID:           primitive.NewObjectID(),
			Resource_key: resource,
			Holder:       holder,
			Acquired_at:  now,
			Expires_at:   now.Add(ttl),
		}
		err := s.store.Insert(ctx, lock)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, ErrDuplicateResource) {
			return false, err
		}
		existing, err := s.store.Get(ctx, resource)
		if err != nil {
			return false, err
		}
		if existing != nil && !existing.Expired(now) {
			return false, nil
		}
		// The holder is gone or record vanished between the insert and the
		// read. Clear any stale record and try the create once more; losing
		// that race to another taker is again just contention.
		if _, err := s.store.DeleteExpired(ctx, resource, now); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Release deletes the lock only when holder still owns it. It never returns
// an error: release runs on cleanup paths where the work's outcome is
// already decided, so a miss is only logged.
func (s *LockService) Release(ctx context.Context, resource string, holder string) bool {
	deleted, err := s.store.DeleteByHolder(ctx, resource, holder)
	if err != nil {
		log.Printf("lock release failed for %s: %v", resource, err)
		return false
	}
	if !deleted {
		log.Printf("lock on %s not held by %s at release", resource, holder)
	}
	return deleted
}

func (s *LockService) IsLocked(ctx context.Context, resource string) (bool, error) {
	lock, err := s.store.Get(ctx, resource)
	if err != nil {
		return false, err
	}
	return lock != nil && !lock.Expired(s.now()), nil
}

// CleanupExpired bulk-deletes every expired record. Safety net for holders
// that crashed before releasing; runs from the sweeper.
func (s *LockService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.store.DeleteAllExpired(ctx, s.now())
}
