package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// AcquirePaymentLock attempts to acquire the per-trip payment lock.
// Returns true if the lock was acquired, false if a charge or refund is
// already in flight for the trip.
func (s *LockStore) AcquirePaymentLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:payment:%s", tripID)

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

// ReleasePaymentLock releases the payment lock for the given trip.
func (s *LockStore) ReleasePaymentLock(ctx context.Context, tripID string) error {
	key := fmt.Sprintf("lock:payment:%s", tripID)

	return s.client.Del(ctx, key).Err()
}
