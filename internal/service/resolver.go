package service

import (
	"context"
	"fmt"
	"log"

	"nemt/internal/domain"
	"nemt/internal/geo"
	"nemt/internal/redis"
)

// ResolverService turns an address pair into a RegionInfo: driving
// distance plus the home-region classification used for tiered mileage
// pricing. Results are cached per (pickup, destination) pair.
type ResolverService struct {
	source     geo.RouteSource
	classifier geo.RegionClassifier
	cache      redis.RouteCacheInterface // optional
}

// NewResolverService creates a new ResolverService. cache may be nil.
func NewResolverService(source geo.RouteSource, classifier geo.RegionClassifier, cache redis.RouteCacheInterface) *ResolverService {
	return &ResolverService{
		source:     source,
		classifier: classifier,
		cache:      cache,
	}
}

// Resolve resolves the route for an address pair. A failed lookup is
// retried once; if it still fails and the caller supplied an estimated
// distance, the result is flagged degraded instead of silently
// defaulting, otherwise ErrResolution is returned.
func (s *ResolverService) Resolve(ctx context.Context, pickup, destination string, estimatedMiles float64) (*domain.RegionInfo, error) {
	if pickup == "" || destination == "" {
		return nil, ErrInvalidAddress
	}
	if pickup == destination {
		return nil, ErrSameAddress
	}

	if s.cache != nil {
		cached, err := s.cache.GetRoute(ctx, pickup, destination)
		if err == nil && cached != nil {
			return cached, nil
		}
		// Cache errors degrade to a live lookup.
	}

	info, err := s.lookup(ctx, pickup, destination)
	if err != nil {
		// One retry; lookups are read-only.
		info, err = s.lookup(ctx, pickup, destination)
	}

	if err != nil {
		if estimatedMiles > 0 {
			log.Printf("route resolution degraded for pickup=%q: %v", pickup, err)
			return degradedRoute(estimatedMiles), nil
		}
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}

	if s.cache != nil {
		_ = s.cache.SetRoute(ctx, pickup, destination, info)
	}

	return info, nil
}

// lookup performs the live distance and region lookups and classifies
// the endpoints.
func (s *ResolverService) lookup(ctx context.Context, pickup, destination string) (*domain.RegionInfo, error) {
	miles, err := s.source.Distance(ctx, pickup, destination)
	if err != nil {
		return nil, err
	}
	if miles <= 0 {
		return nil, fmt.Errorf("mapping service returned distance %.2f for distinct addresses", miles)
	}

	pickupRegion, err := s.source.Region(ctx, pickup)
	if err != nil {
		return nil, err
	}

	destinationRegion, err := s.source.Region(ctx, destination)
	if err != nil {
		return nil, err
	}

	pickupHome := s.classifier.IsHome(pickupRegion)
	destinationHome := s.classifier.IsHome(destinationRegion)

	regionsOut := 0
	if !pickupHome {
		regionsOut++
	}
	if !destinationHome {
		regionsOut++
	}

	return &domain.RegionInfo{
		PickupRegion:      pickupRegion,
		DestinationRegion: destinationRegion,
		BothHomeRegion:    pickupHome && destinationHome,
		RegionsOut:        regionsOut,
		DistanceMiles:     miles,
	}, nil
}

// degradedRoute builds the explicitly-flagged fallback route: the
// client's distance estimate at the conservative (higher) mileage tier,
// with no crossing surcharge since no region evidence exists.
func degradedRoute(estimatedMiles float64) *domain.RegionInfo {
	return &domain.RegionInfo{
		BothHomeRegion:    false,
		RegionsOut:        0,
		DistanceMiles:     estimatedMiles,
		DistanceEstimated: true,
	}
}
