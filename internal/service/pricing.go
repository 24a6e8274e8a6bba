package service

import (
	"fmt"
	"math"
	"time"

	"nemt/internal/config"
	"nemt/internal/domain"
)

// PricingEngine computes itemized trip prices. It is a pure calculator:
// no I/O, deterministic for a given rate card, safe for concurrent use.
type PricingEngine struct {
	cfg config.PricingConfig
}

// NewPricingEngine creates a PricingEngine with the given rate card.
func NewPricingEngine(cfg config.PricingConfig) *PricingEngine {
	return &PricingEngine{cfg: cfg}
}

// Price computes the itemized breakdown for a request and its resolved
// route. Validation runs before any line item is computed; on failure no
// partial breakdown is returned.
//
// Line items are appended in a fixed order: base fare, mileage, region
// surcharge, time surcharge, holiday surcharge, emergency fee,
// wheelchair rental, discount.
func (e *PricingEngine) Price(req domain.TripRequest, region domain.RegionInfo) (*domain.PriceBreakdown, error) {
	if err := e.validate(req, region); err != nil {
		return nil, err
	}

	legs := float64(req.Legs())
	var items []domain.LineItem

	// Base fare: per-leg rate selected by the bariatric weight threshold.
	base := e.cfg.BaseFare
	if req.WeightLbs >= e.cfg.BariatricWeightLbs {
		base = e.cfg.BariatricBaseFare
	}
	items = append(items, domain.LineItem{Name: domain.LineBaseFare, Amount: roundCents(base * legs)})

	// Mileage: lower tier only when both endpoints are in the home region.
	rate := e.cfg.AwayMileRate
	if region.BothHomeRegion {
		rate = e.cfg.HomeMileRate
	}
	items = append(items, domain.LineItem{Name: domain.LineMileage, Amount: roundCents(region.DistanceMiles * legs * rate)})

	// Region-crossing surcharge: 0 or 1 regions out is free, 2 is not.
	if region.RegionsOut >= 2 {
		items = append(items, domain.LineItem{Name: domain.LineRegionSurcharge, Amount: roundCents(e.cfg.RegionSurcharge)})
	}

	// After-hours and weekend trips carry one flat fee, not two.
	if e.afterHours(req.PickupAt) || isWeekend(req.PickupAt) {
		items = append(items, domain.LineItem{Name: domain.LineTimeSurcharge, Amount: roundCents(e.cfg.AfterHoursSurcharge)})
	}

	// Holiday surcharge is distinct from and additive with the time fee.
	if e.isHoliday(req.PickupAt) {
		items = append(items, domain.LineItem{Name: domain.LineHolidaySurcharge, Amount: roundCents(e.cfg.HolidaySurcharge)})
	}

	if req.Emergency {
		items = append(items, domain.LineItem{Name: domain.LineEmergencyFee, Amount: roundCents(e.cfg.EmergencyFee)})
	}

	if req.NeedsRental() {
		items = append(items, domain.LineItem{Name: domain.LineWheelchairRental, Amount: roundCents(e.cfg.WheelchairRentalFee)})
	}

	subtotal := 0.0
	for _, it := range items {
		subtotal += it.Amount
	}
	subtotal = roundCents(subtotal)

	// Exactly one discount tier applies: veteran supersedes default.
	discountRate := e.cfg.DefaultDiscount
	if req.Veteran {
		discountRate = e.cfg.VeteranDiscount
	}
	discount := roundCents(subtotal * discountRate)
	items = append(items, domain.LineItem{Name: domain.LineDiscount, Amount: -discount})

	total := roundCents(subtotal - discount)
	if total < 0 {
		total = 0
	}

	return &domain.PriceBreakdown{
		Items:    items,
		Subtotal: subtotal,
		Total:    total,
	}, nil
}

// BaseFareForLegs returns the rounded base fare across all legs of a
// request. The cancellation refund policy withholds this amount on
// same-day cancellations.
func (e *PricingEngine) BaseFareForLegs(req domain.TripRequest) float64 {
	base := e.cfg.BaseFare
	if req.WeightLbs >= e.cfg.BariatricWeightLbs {
		base = e.cfg.BariatricBaseFare
	}
	return roundCents(base * float64(req.Legs()))
}

func (e *PricingEngine) validate(req domain.TripRequest, region domain.RegionInfo) error {
	if req.PickupAddress == "" || req.DestinationAddress == "" {
		return ErrInvalidAddress
	}
	if req.PickupAddress == req.DestinationAddress {
		return ErrSameAddress
	}
	if req.WeightLbs <= 0 || req.WeightLbs > e.cfg.MaxWeightLbs {
		return fmt.Errorf("%w: %.0f lbs", ErrInvalidWeight, req.WeightLbs)
	}
	if region.DistanceMiles <= 0 {
		return ErrInvalidDistance
	}
	if req.PickupAt.IsZero() {
		return ErrInvalidPickupTime
	}
	if req.RoundTrip && (req.ReturnAt.IsZero() || req.ReturnAt.Before(req.PickupAt)) {
		return ErrInvalidReturnTime
	}
	if req.ExtraPassengers < 0 {
		return ErrInvalidPassengerCount
	}
	switch req.Wheelchair {
	case domain.WheelchairNone, domain.WheelchairManual, domain.WheelchairPower, domain.WheelchairRental:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidWheelchairMode, req.Wheelchair)
	}
	return nil
}

// afterHours reports whether the pickup hour falls outside the daytime
// window.
func (e *PricingEngine) afterHours(t time.Time) bool {
	hour := t.Hour()
	return hour < e.cfg.DayStartHour || hour >= e.cfg.DayEndHour
}

// isHoliday reports whether the pickup date matches the fixed holiday
// list.
func (e *PricingEngine) isHoliday(t time.Time) bool {
	day := t.Format("01-02")
	for _, h := range e.cfg.Holidays {
		if h == day {
			return true
		}
	}
	return false
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// roundCents rounds to the nearest cent using round-half-up.
func roundCents(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
