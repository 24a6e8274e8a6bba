package domain

import "time"

// PaymentKind distinguishes charges from refunds.
type PaymentKind string

const (
	PaymentKindCharge PaymentKind = "charge"
	PaymentKindRefund PaymentKind = "refund"
)

// PaymentAttempt records one charge or refund call against the payment
// provider. Exactly one attempt is written per call regardless of
// outcome; attempts are the audit trail and are never retried
// automatically.
type PaymentAttempt struct {
	ID            string
	TripID        string
	Kind          PaymentKind
	Amount        float64
	InstrumentRef string
	Succeeded     bool
	FailureReason string // provider reason, preserved verbatim for display
	ProviderTxnID string
	CreatedAt     time.Time
}
