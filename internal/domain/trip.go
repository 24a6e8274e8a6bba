package domain

import "time"

// TripStatus represents the lifecycle state of a trip.
//
// The string values are a contract with the dispatcher UI and billing
// display and must not be renamed.
type TripStatus string

const (
	TripStatusPending                TripStatus = "pending"
	TripStatusApprovedPendingPayment TripStatus = "approved_pending_payment"
	TripStatusPaidInProgress         TripStatus = "paid_in_progress"
	TripStatusPaymentFailed          TripStatus = "payment_failed"
	TripStatusInProgress             TripStatus = "in_progress"
	TripStatusCompleted              TripStatus = "completed"
	TripStatusCancelled              TripStatus = "cancelled"
)

// legacyStatusUpcoming is the coarse status older records carry. It maps
// onto pending, the only pre-approval state.
const legacyStatusUpcoming TripStatus = "upcoming"

// NormalizeStatus maps legacy status aliases onto the current enum.
func NormalizeStatus(s TripStatus) TripStatus {
	if s == legacyStatusUpcoming {
		return TripStatusPending
	}
	return s
}

// IsTerminal reports whether no further transition is possible out of s.
// Rating a completed trip does not count as a transition.
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// PaymentStatus tracks the payment side of a trip.
type PaymentStatus string

const (
	PaymentStatusUnset    PaymentStatus = "unset"
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Trip is the persistent booking record. It embeds the originating
// TripRequest and the resolved route at creation time; after that it is
// mutated only through state-machine-approved transitions and never
// deleted (cancellation is a terminal state, not a deletion).
type Trip struct {
	ID       string
	ClientID string
	DriverID string // assigned driver, empty until dispatch

	Request   TripRequest
	Region    RegionInfo
	Breakdown PriceBreakdown
	Price     float64 // Breakdown.Total, denormalized for queries

	Status               TripStatus
	PaymentStatus        PaymentStatus
	PaymentFailureReason string
	InstrumentRef        string // stored payment instrument, copied from the client profile
	RefundedAmount       float64

	Rating int
	Review string

	CreatedAt   time.Time
	ApprovedAt  time.Time
	ChargedAt   time.Time
	CancelledAt time.Time
	CompletedAt time.Time
	RatedAt     time.Time

	CancelReason string
}
