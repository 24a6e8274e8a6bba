package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nemt/internal/domain"
	"nemt/internal/redis"
	"nemt/internal/repository"
)

// paymentLockTTL bounds how long a crashed charge can block a trip.
const paymentLockTTL = 30 * time.Second

// PSP is the interface for a Payment Service Provider. Declines are
// reported as *DeclinedError; any other error is treated as a failed
// attempt with the provider's message preserved.
type PSP interface {
	Charge(ctx context.Context, instrumentRef string, amount float64) (txnID string, err error)
	Refund(ctx context.Context, instrumentRef string, amount float64) (txnID string, err error)
}

// DeclinedError is a provider-reported decline. The reason is preserved
// verbatim for user display.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	return "payment declined: " + e.Reason
}

// MockPSP is a PSP stand-in that always succeeds. Used until a real
// processor integration is wired.
type MockPSP struct{}

// NewMockPSP creates a new mock PSP.
func NewMockPSP() *MockPSP {
	return &MockPSP{}
}

// Charge simulates a charge. Always succeeds.
func (p *MockPSP) Charge(ctx context.Context, instrumentRef string, amount float64) (string, error) {
	return uuid.New().String(), nil
}

// Refund simulates a refund. Always succeeds.
func (p *MockPSP) Refund(ctx context.Context, instrumentRef string, amount float64) (string, error) {
	return uuid.New().String(), nil
}

// PaymentService orchestrates charges and refunds against the provider.
// It guarantees at most one in-flight attempt per trip and records
// exactly one PaymentAttempt per call regardless of outcome. It never
// retries internally: a failed attempt requires an explicit actor-driven
// retry.
type PaymentService struct {
	attemptRepo repository.PaymentAttemptRepository
	psp         PSP
	locks       redis.LockStoreInterface
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(attemptRepo repository.PaymentAttemptRepository, psp PSP, locks redis.LockStoreInterface) *PaymentService {
	return &PaymentService{
		attemptRepo: attemptRepo,
		psp:         psp,
		locks:       locks,
	}
}

// Charge executes one charge for a trip. A concurrent call for the same
// trip fails with ErrPaymentInProgress. Declines come back as a failed
// attempt, not an error; errors are reserved for infrastructure
// failures where no attempt was made.
func (s *PaymentService) Charge(ctx context.Context, trip *domain.Trip, amount float64) (*domain.PaymentAttempt, error) {
	return s.execute(ctx, trip, amount, domain.PaymentKindCharge)
}

// Refund executes one refund for a trip. Symmetric with Charge.
func (s *PaymentService) Refund(ctx context.Context, trip *domain.Trip, amount float64) (*domain.PaymentAttempt, error) {
	return s.execute(ctx, trip, amount, domain.PaymentKindRefund)
}

func (s *PaymentService) execute(ctx context.Context, trip *domain.Trip, amount float64, kind domain.PaymentKind) (*domain.PaymentAttempt, error) {
	if trip == nil || trip.ID == "" {
		return nil, ErrInvalidTripID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if trip.InstrumentRef == "" {
		return nil, ErrMissingInstrument
	}

	// At most one outstanding attempt per trip. The lock is released
	// unconditionally before returning, success or failure.
	ok, err := s.locks.AcquirePaymentLock(ctx, trip.ID, paymentLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPaymentInProgress
	}
	defer func() {
		_ = s.locks.ReleasePaymentLock(ctx, trip.ID)
	}()

	attempt := &domain.PaymentAttempt{
		ID:            uuid.New().String(),
		TripID:        trip.ID,
		Kind:          kind,
		Amount:        amount,
		InstrumentRef: trip.InstrumentRef,
		CreatedAt:     time.Now(),
	}

	var txnID string
	if kind == domain.PaymentKindRefund {
		txnID, err = s.psp.Refund(ctx, trip.InstrumentRef, amount)
	} else {
		txnID, err = s.psp.Charge(ctx, trip.InstrumentRef, amount)
	}

	if err != nil {
		attempt.Succeeded = false
		if declined, isDecline := err.(*DeclinedError); isDecline {
			attempt.FailureReason = declined.Reason
		} else {
			attempt.FailureReason = err.Error()
		}
	} else {
		attempt.Succeeded = true
		attempt.ProviderTxnID = txnID
	}

	if createErr := s.attemptRepo.Create(ctx, attempt); createErr != nil {
		return nil, createErr
	}

	return attempt, nil
}

// GetAttempt retrieves a payment attempt by ID.
func (s *PaymentService) GetAttempt(ctx context.Context, attemptID string) (*domain.PaymentAttempt, error) {
	if attemptID == "" {
		return nil, ErrInvalidAttemptID
	}
	return s.attemptRepo.GetByID(ctx, attemptID)
}

// ListAttempts retrieves the audit trail of attempts for a trip.
func (s *PaymentService) ListAttempts(ctx context.Context, tripID string) ([]*domain.PaymentAttempt, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}
	return s.attemptRepo.ListByTripID(ctx, tripID)
}
