package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nemt/internal/domain"
	"nemt/internal/repository"
)

// Actor identifies who is performing an action, as reported by the
// external auth provider.
type Actor struct {
	ID   string
	Role domain.Role
}

// TripService owns the trip lifecycle: creation with pricing, and every
// state-machine-approved transition with its payment side effects. All
// transitions are all-or-nothing: a failed guard leaves the persisted
// trip unchanged.
type TripService struct {
	tripRepo      repository.TripRepository
	userRepo      repository.UserRepository
	resolver      *ResolverService
	pricing       *PricingEngine
	payments      *PaymentService
	notifications *NotificationService
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	userRepo repository.UserRepository,
	resolver *ResolverService,
	pricing *PricingEngine,
	payments *PaymentService,
	notifications *NotificationService,
) *TripService {
	return &TripService{
		tripRepo:      tripRepo,
		userRepo:      userRepo,
		resolver:      resolver,
		pricing:       pricing,
		payments:      payments,
		notifications: notifications,
	}
}

// CreateTripInput contains the parameters for booking a trip.
type CreateTripInput struct {
	ClientID string
	Request  domain.TripRequest
}

// CreateTrip resolves, prices, and persists a new trip in pending state.
func (s *TripService) CreateTrip(ctx context.Context, input CreateTripInput) (*domain.Trip, error) {
	if input.ClientID == "" {
		return nil, ErrInvalidClientID
	}

	client, err := s.userRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, err
	}

	req := input.Request
	if client.Veteran {
		// The profile flag wins over whatever the form submitted.
		req.Veteran = true
	}

	region, err := s.resolver.Resolve(ctx, req.PickupAddress, req.DestinationAddress, req.EstimatedDistanceMiles)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.pricing.Price(req, *region)
	if err != nil {
		return nil, err
	}

	trip := &domain.Trip{
		ID:            uuid.New().String(),
		ClientID:      input.ClientID,
		Request:       req,
		Region:        *region,
		Breakdown:     *breakdown,
		Price:         breakdown.Total,
		Status:        domain.TripStatusPending,
		PaymentStatus: domain.PaymentStatusUnset,
		InstrumentRef: client.InstrumentRef,
		CreatedAt:     time.Now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		_ = s.notifications.NotifyTripCreated(ctx, trip)
	}

	return trip, nil
}

// Approve moves a pending trip into payment: a successful charge yields
// paid_in_progress with charged_at set, a declined one payment_failed
// with the provider reason retained.
func (s *TripService) Approve(ctx context.Context, tripID string, actor Actor) (*domain.Trip, error) {
	return s.transitionWithCharge(ctx, tripID, actor, ActionApprove)
}

// RetryPayment re-invokes the charge for a payment_failed trip. Each
// retry is an explicit actor-initiated action; there is no retry loop.
func (s *TripService) RetryPayment(ctx context.Context, tripID string, actor Actor) (*domain.Trip, error) {
	return s.transitionWithCharge(ctx, tripID, actor, ActionRetryPayment)
}

func (s *TripService) transitionWithCharge(ctx context.Context, tripID string, actor Actor, action Action) (*domain.Trip, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	outcome, err := Evaluate(trip.Status, action, s.contextFor(trip, actor))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if trip.ApprovedAt.IsZero() {
		trip.ApprovedAt = now
	}

	if outcome.Requires(EffectChargePayment) {
		attempt, err := s.payments.Charge(ctx, trip, trip.Price)
		if err != nil {
			return nil, err
		}

		if attempt.Succeeded {
			trip.Status = ApplyChargeResult(true)
			trip.PaymentStatus = domain.PaymentStatusPaid
			trip.PaymentFailureReason = ""
			trip.ChargedAt = now
		} else {
			trip.Status = ApplyChargeResult(false)
			trip.PaymentStatus = domain.PaymentStatusFailed
			trip.PaymentFailureReason = attempt.FailureReason
		}
	} else {
		trip.Status = outcome.Next
	}

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		if trip.PaymentStatus == domain.PaymentStatusPaid {
			_ = s.notifications.NotifyPaymentSuccess(ctx, trip)
		} else if trip.PaymentStatus == domain.PaymentStatusFailed {
			_ = s.notifications.NotifyPaymentFailed(ctx, trip)
		}
	}

	return trip, nil
}

// MarkInProgress records that the vehicle is underway.
func (s *TripService) MarkInProgress(ctx context.Context, tripID string, actor Actor) (*domain.Trip, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	outcome, err := Evaluate(trip.Status, ActionMarkInProgress, s.contextFor(trip, actor))
	if err != nil {
		return nil, err
	}

	trip.Status = outcome.Next

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		_ = s.notifications.NotifyTripInProgress(ctx, trip)
	}

	return trip, nil
}

// Complete finishes a trip and stamps completed_at.
func (s *TripService) Complete(ctx context.Context, tripID string, actor Actor) (*domain.Trip, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	outcome, err := Evaluate(trip.Status, ActionComplete, s.contextFor(trip, actor))
	if err != nil {
		return nil, err
	}

	trip.Status = outcome.Next
	trip.CompletedAt = time.Now()

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		_ = s.notifications.NotifyTripCompleted(ctx, trip)
	}

	return trip, nil
}

// Rate stores the owner's rating and review on a completed trip. The
// trip status does not change.
func (s *TripService) Rate(ctx context.Context, tripID string, actor Actor, rating int, review string) (*domain.Trip, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	tc := s.contextFor(trip, actor)
	tc.Rating = rating
	tc.AlreadyRated = !trip.RatedAt.IsZero()

	if _, err := Evaluate(trip.Status, ActionRate, tc); err != nil {
		return nil, err
	}

	trip.Rating = rating
	trip.Review = review
	trip.RatedAt = time.Now()

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	return trip, nil
}

// Cancel cancels a trip from any non-terminal state. Refunds are
// date-sensitive: the full price strictly before the pickup day, the
// price less the base fare for all legs on the pickup day, clamped to
// zero and flagged as no refund. A declined refund aborts the
// cancellation so it can be retried.
func (s *TripService) Cancel(ctx context.Context, tripID string, actor Actor, reason string) (*domain.Trip, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	outcome, err := Evaluate(trip.Status, ActionCancel, s.contextFor(trip, actor))
	if err != nil {
		return nil, err
	}

	now := time.Now()

	if outcome.Requires(EffectRefundPayment) && trip.PaymentStatus == domain.PaymentStatusPaid {
		amount, _ := RefundAmount(trip.Price, s.pricing.BaseFareForLegs(trip.Request), trip.Request.PickupAt, now)
		if amount > 0 {
			attempt, err := s.payments.Refund(ctx, trip, amount)
			if err != nil {
				return nil, err
			}
			if !attempt.Succeeded {
				return nil, fmt.Errorf("%w: %s", ErrRefundFailed, attempt.FailureReason)
			}
			trip.PaymentStatus = domain.PaymentStatusRefunded
			trip.RefundedAmount = amount
		}
	}

	trip.Status = outcome.Next
	trip.CancelledAt = now
	trip.CancelReason = reason

	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	if s.notifications != nil {
		_ = s.notifications.NotifyTripCancelled(ctx, trip)
	}

	return trip, nil
}

// GetTrip retrieves a trip. Client reads are filtered by ownership.
func (s *TripService) GetTrip(ctx context.Context, tripID string, actor Actor) (*domain.Trip, error) {
	trip, err := s.getTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if actor.Role == domain.RoleClient && trip.ClientID != actor.ID {
		return nil, ErrNotTripOwner
	}

	return trip, nil
}

// ListTrips retrieves recent trips: all of them for dispatchers, only
// the actor's own for clients.
func (s *TripService) ListTrips(ctx context.Context, actor Actor) ([]*domain.Trip, error) {
	if actor.Role == domain.RoleClient {
		return s.tripRepo.GetByClientID(ctx, actor.ID)
	}
	return s.tripRepo.GetAll(ctx)
}

func (s *TripService) getTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.tripRepo.GetByID(ctx, tripID)
}

func (s *TripService) contextFor(trip *domain.Trip, actor Actor) TransitionContext {
	return TransitionContext{
		Role:    actor.Role,
		IsOwner: actor.ID != "" && actor.ID == trip.ClientID,
	}
}
