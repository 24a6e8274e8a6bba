package service

import (
	"fmt"
	"time"

	"nemt/internal/domain"
)

// Action is a requested state change on a trip.
type Action string

const (
	ActionApprove        Action = "approve"
	ActionRetryPayment   Action = "retry_payment"
	ActionMarkInProgress Action = "mark_in_progress"
	ActionComplete       Action = "complete"
	ActionRate           Action = "rate"
	ActionCancel         Action = "cancel"
)

// Effect is a side effect a transition requires the caller to perform.
// The transition table itself is pure; effects are executed by TripService.
type Effect string

const (
	EffectChargePayment Effect = "charge_payment"
	EffectRefundPayment Effect = "refund_payment"
	EffectNotifyClient  Effect = "notify_client"
)

// TransitionContext carries the actor and action attributes the guards
// need. It holds no references to storage; transition evaluation never
// touches I/O.
type TransitionContext struct {
	Role         domain.Role
	IsOwner      bool
	Rating       int
	AlreadyRated bool
}

// Outcome describes the result of a legal transition: the next status
// and the side effects the caller must perform.
type Outcome struct {
	Next    domain.TripStatus
	Effects []Effect
}

// Requires reports whether the outcome demands the given effect.
func (o *Outcome) Requires(e Effect) bool {
	for _, eff := range o.Effects {
		if eff == e {
			return true
		}
	}
	return false
}

// Evaluate is the trip state machine. Given the current status, an
// action, and its context it returns the next status and required side
// effects, or an error when the transition is not legal. Evaluation has
// no side effects itself: a rejected transition leaves nothing to undo.
func Evaluate(current domain.TripStatus, action Action, tc TransitionContext) (*Outcome, error) {
	current = domain.NormalizeStatus(current)

	switch action {
	case ActionApprove:
		if current != domain.TripStatusPending {
			return nil, invalidTransition(current, action)
		}
		if tc.Role != domain.RoleDispatcher {
			return nil, ErrActorNotAllowed
		}
		return &Outcome{
			Next:    domain.TripStatusApprovedPendingPayment,
			Effects: []Effect{EffectChargePayment, EffectNotifyClient},
		}, nil

	case ActionRetryPayment:
		if current != domain.TripStatusPaymentFailed {
			return nil, invalidTransition(current, action)
		}
		if !actorIsDispatcherOrOwner(tc) {
			return nil, actorError(tc)
		}
		return &Outcome{
			Next:    domain.TripStatusApprovedPendingPayment,
			Effects: []Effect{EffectChargePayment, EffectNotifyClient},
		}, nil

	case ActionMarkInProgress:
		if current != domain.TripStatusPaidInProgress && current != domain.TripStatusApprovedPendingPayment {
			return nil, invalidTransition(current, action)
		}
		if tc.Role != domain.RoleDispatcher {
			return nil, ErrActorNotAllowed
		}
		return &Outcome{
			Next:    domain.TripStatusInProgress,
			Effects: []Effect{EffectNotifyClient},
		}, nil

	case ActionComplete:
		if current != domain.TripStatusInProgress && current != domain.TripStatusPaidInProgress {
			return nil, invalidTransition(current, action)
		}
		if tc.Role != domain.RoleDispatcher && tc.Role != domain.RoleDriver {
			return nil, ErrActorNotAllowed
		}
		return &Outcome{
			Next:    domain.TripStatusCompleted,
			Effects: []Effect{EffectNotifyClient},
		}, nil

	case ActionRate:
		if current != domain.TripStatusCompleted {
			return nil, invalidTransition(current, action)
		}
		if tc.Role != domain.RoleClient || !tc.IsOwner {
			return nil, actorError(tc)
		}
		if tc.Rating < 1 || tc.Rating > 5 {
			return nil, ErrInvalidRating
		}
		if tc.AlreadyRated {
			return nil, ErrAlreadyRated
		}
		// Rating stores a review; the status does not change.
		return &Outcome{Next: domain.TripStatusCompleted}, nil

	case ActionCancel:
		if current.IsTerminal() {
			return nil, invalidTransition(current, action)
		}
		if !actorIsDispatcherOrOwner(tc) {
			return nil, actorError(tc)
		}
		return &Outcome{
			Next:    domain.TripStatusCancelled,
			Effects: []Effect{EffectRefundPayment, EffectNotifyClient},
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
}

// ApplyChargeResult resolves the post-charge status: a successful charge
// moves the trip to paid_in_progress, a declined one to payment_failed.
func ApplyChargeResult(succeeded bool) domain.TripStatus {
	if succeeded {
		return domain.TripStatusPaidInProgress
	}
	return domain.TripStatusPaymentFailed
}

// RefundAmount computes the refund owed for a cancellation. Cancelling
// strictly before the pickup calendar day refunds the full price; on or
// after the pickup day the base fare for all legs is withheld, clamped
// at zero (flagged as no refund rather than a negative amount).
func RefundAmount(price, baseFareAllLegs float64, pickupAt, cancelledAt time.Time) (amount float64, full bool) {
	py, pm, pd := pickupAt.Date()
	cy, cm, cd := cancelledAt.Date()

	pickupDay := time.Date(py, pm, pd, 0, 0, 0, 0, time.UTC)
	cancelDay := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)

	if cancelDay.Before(pickupDay) {
		return price, true
	}

	amount = price - baseFareAllLegs
	if amount < 0 {
		amount = 0
	}
	return amount, false
}

func actorIsDispatcherOrOwner(tc TransitionContext) bool {
	if tc.Role == domain.RoleDispatcher {
		return true
	}
	return tc.Role == domain.RoleClient && tc.IsOwner
}

// actorError distinguishes "wrong role" from "right role, wrong trip".
func actorError(tc TransitionContext) error {
	if tc.Role == domain.RoleClient && !tc.IsOwner {
		return ErrNotTripOwner
	}
	return ErrActorNotAllowed
}

func invalidTransition(current domain.TripStatus, action Action) error {
	return fmt.Errorf("%w: cannot %s a %s trip", ErrInvalidTransition, action, current)
}
