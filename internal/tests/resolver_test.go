package tests

import (
	"context"
	"errors"
	"testing"

	"nemt/internal/geo"
	"nemt/internal/service"
)

// ──────────────────────────────────────────────
// 5. ROUTE RESOLUTION EDGE CASES
// ──────────────────────────────────────────────

func newResolver(routes *MockRouteSource, cache *MockRouteCache) *service.ResolverService {
	classifier := geo.NewAllowListClassifier("Franklin County", []string{"Columbus", "Dublin"})
	if cache == nil {
		return service.NewResolverService(routes, classifier, nil)
	}
	return service.NewResolverService(routes, classifier, cache)
}

func TestResolver_ClassifiesEndpoints(t *testing.T) {
	t.Parallel()

	routes := NewMockRouteSource(12.5)
	routes.Regions["home addr"] = "Franklin County"
	routes.Regions["away addr"] = "Licking County"

	resolver := newResolver(routes, nil)

	info, err := resolver.Resolve(context.Background(), "home addr", "away addr", 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if info.BothHomeRegion {
		t.Error("expected mixed-region route")
	}
	if info.RegionsOut != 1 {
		t.Errorf("expected 1 region out, got %d", info.RegionsOut)
	}
	if info.DistanceMiles != 12.5 {
		t.Errorf("expected 12.5 miles, got %.2f", info.DistanceMiles)
	}
	if info.DistanceEstimated {
		t.Error("live lookup must not be flagged estimated")
	}
}

func TestResolver_LocalityCountsAsHome(t *testing.T) {
	t.Parallel()

	routes := NewMockRouteSource(5)
	// The provider sometimes reports a locality instead of a county.
	routes.Regions["a"] = "Columbus"
	routes.Regions["b"] = "dublin" // classifier is case-insensitive

	resolver := newResolver(routes, nil)

	info, err := resolver.Resolve(context.Background(), "a", "b", 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !info.BothHomeRegion || info.RegionsOut != 0 {
		t.Errorf("expected both-home route, got %+v", info)
	}
}

func TestResolver_EmptyRegionIsNeverHome(t *testing.T) {
	t.Parallel()

	routes := NewMockRouteSource(5)
	routes.Regions["a"] = "Franklin County"
	// "b" has no mapped region: the provider reported none.

	resolver := newResolver(routes, nil)

	info, err := resolver.Resolve(context.Background(), "a", "b", 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if info.BothHomeRegion {
		t.Error("an unreported region must not count as home")
	}
	if info.RegionsOut != 1 {
		t.Errorf("expected 1 region out, got %d", info.RegionsOut)
	}
}

func TestResolver_InputValidation(t *testing.T) {
	t.Parallel()

	resolver := newResolver(NewMockRouteSource(5), nil)

	if _, err := resolver.Resolve(context.Background(), "", "b", 0); !errors.Is(err, service.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), "a", "", 0); !errors.Is(err, service.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), "a", "a", 0); !errors.Is(err, service.ErrSameAddress) {
		t.Errorf("expected ErrSameAddress, got %v", err)
	}
}

func TestResolver_RetriesOnceThenRecovers(t *testing.T) {
	t.Parallel()

	routes := NewMockRouteSource(8)
	routes.Regions["a"] = "Franklin County"
	routes.Regions["b"] = "Franklin County"
	routes.FailDistanceTimes = 1
	routes.DistanceError = errors.New("upstream timeout")

	resolver := newResolver(routes, nil)

	info, err := resolver.Resolve(context.Background(), "a", "b", 0)
	if err != nil {
		t.Fatalf("expected retry to recover, got: %v", err)
	}
	if info.DistanceMiles != 8 {
		t.Errorf("expected 8 miles, got %.2f", info.DistanceMiles)
	}
	if routes.DistanceCallCount != 2 {
		t.Errorf("expected 2 distance calls, got %d", routes.DistanceCallCount)
	}
}

func TestResolver_DegradedFallbackUsesEstimate(t *testing.T) {
	t.Parallel()

	routes := NewMockRouteSource(8)
	routes.FailDistanceTimes = 2 // original call and the retry both fail
	routes.DistanceError = errors.New("upstream down")

	resolver := newResolver(routes, nil)

	info, err := resolver.Resolve(context.Background(), "a", "b", 14)
	if err != nil {
		t.Fatalf("expected degraded fallback, got: %v", err)
	}

	if !info.DistanceEstimated {
		t.Error("fallback route must be flagged estimated")
	}
	if info.DistanceMiles != 14 {
		t.Errorf("expected client estimate 14, got %.2f", info.DistanceMiles)
	}
	if info.BothHomeRegion || info.RegionsOut != 0 {
		t.Errorf("degraded route must carry no region evidence, got %+v", info)
	}
}

func TestResolver_PersistentFailureWithoutEstimate(t *testing.T) {
	t.Parallel()

	routes := NewMockRouteSource(8)
	routes.FailDistanceTimes = 2
	routes.DistanceError = errors.New("upstream down")

	resolver := newResolver(routes, nil)

	_, err := resolver.Resolve(context.Background(), "a", "b", 0)
	if !errors.Is(err, service.ErrResolution) {
		t.Fatalf("expected ErrResolution, got %v", err)
	}
}

func TestResolver_CacheHitSkipsLookup(t *testing.T) {
	t.Parallel()

	routes := NewMockRouteSource(8)
	routes.Regions["a"] = "Franklin County"
	routes.Regions["b"] = "Franklin County"
	cache := NewMockRouteCache()

	resolver := newResolver(routes, cache)

	first, err := resolver.Resolve(context.Background(), "a", "b", 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if routes.DistanceCallCount != 1 {
		t.Fatalf("expected 1 live lookup, got %d", routes.DistanceCallCount)
	}

	second, err := resolver.Resolve(context.Background(), "a", "b", 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if routes.DistanceCallCount != 1 {
		t.Errorf("expected cache hit to skip the lookup, got %d calls", routes.DistanceCallCount)
	}
	if *first != *second {
		t.Errorf("expected identical route, got %+v vs %+v", first, second)
	}
}

func TestResolver_DegradedRouteIsNotCached(t *testing.T) {
	t.Parallel()

	routes := NewMockRouteSource(8)
	routes.FailDistanceTimes = 2
	routes.DistanceError = errors.New("upstream down")
	cache := NewMockRouteCache()

	resolver := newResolver(routes, cache)

	if _, err := resolver.Resolve(context.Background(), "a", "b", 14); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if cache.SetCallCount != 0 {
		t.Errorf("degraded routes must not be cached, got %d writes", cache.SetCallCount)
	}
}
