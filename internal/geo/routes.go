package geo

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

const metersPerMile = 1609.344

// ErrNoRoute is returned when the mapping service finds no driving route
// between two addresses.
var ErrNoRoute = errors.New("no route found")

// RouteSource looks up driving distances and administrative regions for
// street addresses. Implementations are read-only and safe for
// concurrent use.
type RouteSource interface {
	// Distance returns the driving distance in miles between two
	// addresses.
	Distance(ctx context.Context, origin, destination string) (float64, error)

	// Region returns the county-level administrative region for an
	// address, or an empty string when the provider does not report one.
	Region(ctx context.Context, address string) (string, error)
}

// GoogleRoutes is a RouteSource backed by the Google Maps Directions and
// Geocoding APIs.
type GoogleRoutes struct {
	client *maps.Client
}

// NewGoogleRoutes creates a GoogleRoutes with the given API key.
func NewGoogleRoutes(apiKey string) (*GoogleRoutes, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleRoutes{client: client}, nil
}

// Distance returns the driving distance in miles between two addresses.
func (g *GoogleRoutes) Distance(ctx context.Context, origin, destination string) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := g.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, ErrNoRoute
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}

	return float64(meters) / metersPerMile, nil
}

// Region geocodes an address and returns its county
// (administrative_area_level_2) component.
func (g *GoogleRoutes) Region(ctx context.Context, address string) (string, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return "", fmt.Errorf("maps api error: %w", err)
	}

	if len(results) == 0 {
		return "", nil
	}

	for _, comp := range results[0].AddressComponents {
		for _, t := range comp.Types {
			if t == "administrative_area_level_2" {
				return comp.LongName, nil
			}
		}
	}

	return "", nil
}

// Ensure GoogleRoutes implements RouteSource.
var _ RouteSource = (*GoogleRoutes)(nil)
