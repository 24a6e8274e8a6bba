package domain

import "time"

// WheelchairMode describes the passenger's wheelchair situation.
type WheelchairMode string

const (
	WheelchairNone   WheelchairMode = "none"
	WheelchairManual WheelchairMode = "manual"
	WheelchairPower  WheelchairMode = "power"
	WheelchairRental WheelchairMode = "rental"
)

// TripRequest holds the attributes of a requested ride. It is immutable
// once priced.
type TripRequest struct {
	PickupAddress      string
	DestinationAddress string
	PickupAt           time.Time
	RoundTrip          bool
	ReturnAt           time.Time // set only for round trips

	Wheelchair       WheelchairMode
	WheelchairRental bool // rental explicitly requested (only meaningful with mode "none")
	WeightLbs        float64
	ExtraPassengers  int
	Emergency        bool
	Veteran          bool

	// EstimatedDistanceMiles is a client-supplied fallback used only when
	// the mapping lookup fails; the resulting route is flagged degraded.
	EstimatedDistanceMiles float64
}

// NeedsRental reports whether a wheelchair rental is being requested.
// Passengers bringing their own manual or power chair are never charged
// a rental fee.
func (r TripRequest) NeedsRental() bool {
	if r.Wheelchair == WheelchairRental {
		return true
	}
	return r.Wheelchair == WheelchairNone && r.WheelchairRental
}

// Legs returns the number of travel legs (2 for a round trip).
func (r TripRequest) Legs() int {
	if r.RoundTrip {
		return 2
	}
	return 1
}
