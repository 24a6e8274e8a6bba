package domain

// RegionInfo is the resolved route for one (pickup, destination) pair.
// Derived once per pricing calculation and never mutated.
type RegionInfo struct {
	PickupRegion      string
	DestinationRegion string

	// BothHomeRegion is true only when pickup and destination both fall
	// inside the home region; it selects the lower mileage tier.
	BothHomeRegion bool

	// RegionsOut counts the trip endpoints outside the home region
	// (0, 1 or 2). The flat crossing surcharge applies only at 2.
	RegionsOut int

	DistanceMiles float64

	// DistanceEstimated marks the degraded path: the mapping lookup
	// failed and the distance came from the client's estimate.
	DistanceEstimated bool
}
