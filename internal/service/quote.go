package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nemt/internal/domain"
	"nemt/internal/redis"
)

// QuoteService prices a trip request without persisting anything.
// Quotes are held in a TTL-evicted keyed store so a client can confirm
// a price before booking.
type QuoteService struct {
	resolver *ResolverService
	pricing  *PricingEngine
	cache    redis.QuoteCacheInterface // optional
}

// NewQuoteService creates a new QuoteService. cache may be nil.
func NewQuoteService(resolver *ResolverService, pricing *PricingEngine, cache redis.QuoteCacheInterface) *QuoteService {
	return &QuoteService{
		resolver: resolver,
		pricing:  pricing,
		cache:    cache,
	}
}

// Quote resolves and prices a request, returning an expiring quote.
func (s *QuoteService) Quote(ctx context.Context, req domain.TripRequest) (*redis.CachedQuote, error) {
	region, err := s.resolver.Resolve(ctx, req.PickupAddress, req.DestinationAddress, req.EstimatedDistanceMiles)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.pricing.Price(req, *region)
	if err != nil {
		return nil, err
	}

	quote := &redis.CachedQuote{
		ID:        uuid.New().String(),
		Breakdown: *breakdown,
		Region:    *region,
		CreatedAt: time.Now(),
	}

	if s.cache != nil {
		// Best effort; an uncached quote just cannot be looked up again.
		_ = s.cache.SetQuote(ctx, quote)
	}

	return quote, nil
}

// GetQuote looks up a previously issued quote.
func (s *QuoteService) GetQuote(ctx context.Context, quoteID string) (*redis.CachedQuote, error) {
	if s.cache == nil || quoteID == "" {
		return nil, ErrQuoteNotFound
	}

	quote, err := s.cache.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, ErrQuoteNotFound
	}

	return quote, nil
}
