package redis

import (
	"context"
	"time"

	"nemt/internal/domain"
)

// LockStoreInterface defines the interface for the per-trip payment lock.
type LockStoreInterface interface {
	AcquirePaymentLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, tripID string) error
}

// RouteCacheInterface defines the interface for resolved-route caching.
type RouteCacheInterface interface {
	GetRoute(ctx context.Context, pickup, destination string) (*domain.RegionInfo, error)
	SetRoute(ctx context.Context, pickup, destination string, info *domain.RegionInfo) error
}

// QuoteCacheInterface defines the interface for quote caching.
type QuoteCacheInterface interface {
	GetQuote(ctx context.Context, quoteID string) (*CachedQuote, error)
	SetQuote(ctx context.Context, quote *CachedQuote) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface  = (*LockStore)(nil)
	_ RouteCacheInterface = (*CacheStore)(nil)
	_ QuoteCacheInterface = (*CacheStore)(nil)
)
