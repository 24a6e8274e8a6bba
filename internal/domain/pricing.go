package domain

// Line item names. These are the billing display contract; downstream
// consumers match on them by name.
const (
	LineBaseFare         = "base_fare"
	LineMileage          = "mileage"
	LineRegionSurcharge  = "region_surcharge"
	LineTimeSurcharge    = "time_surcharge"
	LineHolidaySurcharge = "holiday_surcharge"
	LineEmergencyFee     = "emergency_fee"
	LineWheelchairRental = "wheelchair_rental"
	LineDiscount         = "discount"
)

// LineItem is one named, signed component of a price. Discounts carry a
// negative amount.
type LineItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// PriceBreakdown is the itemized result of pricing one trip request.
// Invariant: Total = Subtotal - sum(discounts), rounded to cents, and
// Total >= 0.
type PriceBreakdown struct {
	Items    []LineItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Total    float64    `json:"total"`
}

// Item returns the amount for a named line item and whether it is present.
func (b PriceBreakdown) Item(name string) (float64, bool) {
	for _, it := range b.Items {
		if it.Name == name {
			return it.Amount, true
		}
	}
	return 0, false
}
