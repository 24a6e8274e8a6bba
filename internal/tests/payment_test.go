package tests

import (
	"context"
	"errors"
	"sync"
	"testing"

	"nemt/internal/domain"
	"nemt/internal/service"
)

// ──────────────────────────────────────────────
// 4. PAYMENT ORCHESTRATION EDGE CASES
// ──────────────────────────────────────────────

func paidTrip() *domain.Trip {
	return &domain.Trip{
		ID:            "trip-1",
		ClientID:      "client-1",
		Price:         72.00,
		InstrumentRef: "card-1",
		Status:        domain.TripStatusApprovedPendingPayment,
	}
}

func TestPayment_ChargeRecordsOneAttempt(t *testing.T) {
	t.Parallel()

	attemptRepo := NewMockPaymentAttemptRepository()
	psp := NewScriptedPSP()
	locks := NewMockLockStore()
	payments := service.NewPaymentService(attemptRepo, psp, locks)

	attempt, err := payments.Charge(context.Background(), paidTrip(), 72.00)
	if err != nil {
		t.Fatalf("charge: %v", err)
	}

	if !attempt.Succeeded {
		t.Error("expected attempt to succeed")
	}
	if attempt.Kind != domain.PaymentKindCharge {
		t.Errorf("expected charge kind, got %s", attempt.Kind)
	}
	if attempt.ProviderTxnID == "" {
		t.Error("expected provider txn id")
	}
	if attemptRepo.CountAttempts("trip-1") != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", attemptRepo.CountAttempts("trip-1"))
	}
	if locks.IsLocked("trip-1") {
		t.Error("lock must be released after the charge")
	}
}

func TestPayment_DeclineIsAnOutcomeNotAnError(t *testing.T) {
	t.Parallel()

	attemptRepo := NewMockPaymentAttemptRepository()
	psp := NewScriptedPSP()
	psp.ChargeError = &service.DeclinedError{Reason: "card expired"}
	payments := service.NewPaymentService(attemptRepo, psp, NewMockLockStore())

	attempt, err := payments.Charge(context.Background(), paidTrip(), 72.00)
	if err != nil {
		t.Fatalf("expected decline to return an attempt, got error: %v", err)
	}

	if attempt.Succeeded {
		t.Error("expected failed attempt")
	}
	if attempt.FailureReason != "card expired" {
		t.Errorf("expected provider reason verbatim, got %q", attempt.FailureReason)
	}
	// The failed attempt is still on the audit trail.
	if attemptRepo.CountAttempts("trip-1") != 1 {
		t.Errorf("expected 1 attempt recorded, got %d", attemptRepo.CountAttempts("trip-1"))
	}
}

func TestPayment_ConcurrentChargeRejected(t *testing.T) {
	t.Parallel()

	attemptRepo := NewMockPaymentAttemptRepository()
	psp := NewScriptedPSP()
	locks := NewMockLockStore()
	locks.HoldLock("trip-1") // a charge is already in flight
	payments := service.NewPaymentService(attemptRepo, psp, locks)

	_, err := payments.Charge(context.Background(), paidTrip(), 72.00)
	if !errors.Is(err, service.ErrPaymentInProgress) {
		t.Fatalf("expected ErrPaymentInProgress, got %v", err)
	}

	// No attempt may be recorded when the lock is contended.
	if attemptRepo.CountAttempts("trip-1") != 0 {
		t.Errorf("expected no attempts, got %d", attemptRepo.CountAttempts("trip-1"))
	}
	if psp.ChargeCallCount != 0 {
		t.Errorf("expected no provider call, got %d", psp.ChargeCallCount)
	}
}

func TestPayment_ParallelChargesProduceOneProviderCallEach(t *testing.T) {
	t.Parallel()

	attemptRepo := NewMockPaymentAttemptRepository()
	psp := NewScriptedPSP()
	locks := NewMockLockStore()
	payments := service.NewPaymentService(attemptRepo, psp, locks)

	const goroutines = 8
	var wg sync.WaitGroup
	results := make(chan error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := payments.Charge(context.Background(), paidTrip(), 72.00)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	// Every call either charged (serially, lock released between calls)
	// or was rejected as in-progress; nothing else.
	succeeded := 0
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, service.ErrPaymentInProgress):
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded == 0 {
		t.Error("expected at least one charge to get the lock")
	}
	if int(psp.ChargeCallCount) != succeeded {
		t.Errorf("expected %d provider calls, got %d", succeeded, psp.ChargeCallCount)
	}
	if attemptRepo.CountAttempts("trip-1") != succeeded {
		t.Errorf("expected %d attempts, got %d", succeeded, attemptRepo.CountAttempts("trip-1"))
	}
}

func TestPayment_ValidationBeforeLock(t *testing.T) {
	t.Parallel()

	attemptRepo := NewMockPaymentAttemptRepository()
	locks := NewMockLockStore()
	payments := service.NewPaymentService(attemptRepo, NewScriptedPSP(), locks)

	testCases := []struct {
		name    string
		trip    *domain.Trip
		amount  float64
		wantErr error
	}{
		{"nil trip", nil, 10, service.ErrInvalidTripID},
		{"zero amount", paidTrip(), 0, service.ErrInvalidAmount},
		{"negative amount", paidTrip(), -5, service.ErrInvalidAmount},
		{
			"missing instrument",
			&domain.Trip{ID: "trip-2", ClientID: "client-1", Price: 10},
			10,
			service.ErrMissingInstrument,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := payments.Charge(context.Background(), tc.trip, tc.amount)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}

	if locks.AcquireCallCount != 0 {
		t.Errorf("validation failures must not touch the lock, got %d acquires", locks.AcquireCallCount)
	}
}

func TestPayment_RefundUsesRefundKind(t *testing.T) {
	t.Parallel()

	attemptRepo := NewMockPaymentAttemptRepository()
	psp := NewScriptedPSP()
	payments := service.NewPaymentService(attemptRepo, psp, NewMockLockStore())

	attempt, err := payments.Refund(context.Background(), paidTrip(), 50.00)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}

	if attempt.Kind != domain.PaymentKindRefund {
		t.Errorf("expected refund kind, got %s", attempt.Kind)
	}
	if psp.RefundCallCount != 1 || psp.ChargeCallCount != 0 {
		t.Errorf("expected exactly one refund call, got charge=%d refund=%d", psp.ChargeCallCount, psp.RefundCallCount)
	}
	if psp.LastRefundAmount != 50.00 {
		t.Errorf("expected refund amount 50.00, got %.2f", psp.LastRefundAmount)
	}
}

func TestPayment_AuditTrailLookups(t *testing.T) {
	t.Parallel()

	attemptRepo := NewMockPaymentAttemptRepository()
	payments := service.NewPaymentService(attemptRepo, NewScriptedPSP(), NewMockLockStore())

	first, err := payments.Charge(context.Background(), paidTrip(), 72.00)
	if err != nil {
		t.Fatalf("charge: %v", err)
	}
	if _, err := payments.Refund(context.Background(), paidTrip(), 72.00); err != nil {
		t.Fatalf("refund: %v", err)
	}

	got, err := payments.GetAttempt(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if got.ID != first.ID {
		t.Errorf("expected attempt %s, got %s", first.ID, got.ID)
	}

	all, err := payments.ListAttempts(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(all))
	}

	if _, err := payments.GetAttempt(context.Background(), ""); !errors.Is(err, service.ErrInvalidAttemptID) {
		t.Errorf("expected ErrInvalidAttemptID, got %v", err)
	}
	if _, err := payments.ListAttempts(context.Background(), ""); !errors.Is(err, service.ErrInvalidTripID) {
		t.Errorf("expected ErrInvalidTripID, got %v", err)
	}
}
