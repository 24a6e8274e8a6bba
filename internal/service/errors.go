package service

import "errors"

var (
	// ErrInvalidClientID is returned when the client ID is empty.
	ErrInvalidClientID = errors.New("invalid client id")

	// ErrInvalidTripID is returned when the trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidUserID is returned when a user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidAttemptID is returned when a payment attempt ID is empty.
	ErrInvalidAttemptID = errors.New("invalid payment attempt id")

	// ErrInvalidAddress is returned when a pickup or destination address
	// is empty.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrSameAddress is returned when pickup and destination are identical.
	ErrSameAddress = errors.New("pickup and destination are the same address")

	// ErrInvalidWeight is returned when passenger weight is non-positive
	// or absurdly large.
	ErrInvalidWeight = errors.New("invalid passenger weight")

	// ErrInvalidDistance is returned when trip distance is non-positive.
	ErrInvalidDistance = errors.New("invalid trip distance")

	// ErrInvalidPickupTime is returned when the pickup timestamp is missing.
	ErrInvalidPickupTime = errors.New("invalid pickup time")

	// ErrInvalidReturnTime is returned when a round trip's return time is
	// missing or before pickup.
	ErrInvalidReturnTime = errors.New("invalid return time")

	// ErrInvalidWheelchairMode is returned for an unknown wheelchair mode.
	ErrInvalidWheelchairMode = errors.New("invalid wheelchair mode")

	// ErrInvalidPassengerCount is returned when the additional passenger
	// count is negative.
	ErrInvalidPassengerCount = errors.New("invalid passenger count")

	// ErrInvalidRating is returned when a rating falls outside [1,5].
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrAlreadyRated is returned when a trip has already been rated.
	ErrAlreadyRated = errors.New("trip already rated")

	// ErrInvalidAmount is returned when a payment amount is non-positive.
	ErrInvalidAmount = errors.New("invalid payment amount")

	// ErrMissingInstrument is returned when a charge is requested for a
	// trip with no stored payment instrument.
	ErrMissingInstrument = errors.New("no payment instrument on file")

	// ErrInvalidTransition is returned when an action is not legal from
	// the trip's current state. The trip is left unchanged.
	ErrInvalidTransition = errors.New("invalid trip transition")

	// ErrActorNotAllowed is returned when the actor's role may not
	// perform the requested action.
	ErrActorNotAllowed = errors.New("actor not allowed to perform this action")

	// ErrNotTripOwner is returned when a client acts on a trip they do
	// not own.
	ErrNotTripOwner = errors.New("not the trip owner")

	// ErrPaymentInProgress is returned when a charge or refund is already
	// in flight for the trip.
	ErrPaymentInProgress = errors.New("payment already processing for this trip")

	// ErrResolution is returned when the mapping lookup fails and no
	// degraded estimate is available.
	ErrResolution = errors.New("route resolution failed")

	// ErrRefundFailed is returned when a cancellation refund is declined.
	// The cancellation is aborted so the trip can be cancelled again once
	// the refund can go through.
	ErrRefundFailed = errors.New("refund failed")

	// ErrQuoteNotFound is returned when a quote has expired or never
	// existed.
	ErrQuoteNotFound = errors.New("quote not found or expired")
)
