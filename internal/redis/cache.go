package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"nemt/internal/domain"
)

// CacheStore handles short-lived caching in Redis. It replaces the ad
// hoc in-memory maps of the legacy booking flow with an explicit keyed
// store with TTL eviction.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	RouteCacheTTL = 10 * time.Minute // resolved routes rarely change
	QuoteCacheTTL = 15 * time.Minute // quotes expire before rates can drift
)

// Key prefixes
const (
	routeCachePrefix = "cache:route:"
	quoteCachePrefix = "cache:quote:"
)

// routeKey derives a stable key from the address pair.
func routeKey(pickup, destination string) string {
	sum := sha256.Sum256([]byte(pickup + "|" + destination))
	return routeCachePrefix + hex.EncodeToString(sum[:])
}

// GetRoute retrieves a resolved route from cache. Returns nil on a miss.
func (s *CacheStore) GetRoute(ctx context.Context, pickup, destination string) (*domain.RegionInfo, error) {
	data, err := s.client.Get(ctx, routeKey(pickup, destination)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var info domain.RegionInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// SetRoute stores a resolved route in cache.
func (s *CacheStore) SetRoute(ctx context.Context, pickup, destination string, info *domain.RegionInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, routeKey(pickup, destination), data, RouteCacheTTL).Err()
}

// CachedQuote is a priced but unbooked trip request held for the client
// to confirm.
type CachedQuote struct {
	ID        string                `json:"id"`
	Breakdown domain.PriceBreakdown `json:"breakdown"`
	Region    domain.RegionInfo     `json:"region"`
	CreatedAt time.Time             `json:"created_at"`
}

// GetQuote retrieves a quote from cache. Returns nil if the quote has
// expired or never existed.
func (s *CacheStore) GetQuote(ctx context.Context, quoteID string) (*CachedQuote, error) {
	data, err := s.client.Get(ctx, quoteCachePrefix+quoteID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var quote CachedQuote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// SetQuote stores a quote in cache with TTL eviction.
func (s *CacheStore) SetQuote(ctx context.Context, quote *CachedQuote) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, quoteCachePrefix+quote.ID, data, QuoteCacheTTL).Err()
}
