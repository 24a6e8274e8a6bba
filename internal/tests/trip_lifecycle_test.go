package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"nemt/internal/config"
	"nemt/internal/domain"
	"nemt/internal/geo"
	"nemt/internal/repository"
	"nemt/internal/service"
)

// ──────────────────────────────────────────────
// 3. TRIP LIFECYCLE EDGE CASES
// ──────────────────────────────────────────────

type lifecycleFixture struct {
	tripRepo    *MockTripRepository
	userRepo    *MockUserRepository
	attemptRepo *MockPaymentAttemptRepository
	psp         *ScriptedPSP
	locks       *MockLockStore
	routes      *MockRouteSource
	trips       *service.TripService
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		tripRepo:    NewMockTripRepository(),
		userRepo:    NewMockUserRepository(),
		attemptRepo: NewMockPaymentAttemptRepository(),
		psp:         NewScriptedPSP(),
		locks:       NewMockLockStore(),
		routes:      NewMockRouteSource(10),
	}

	f.routes.Regions["100 Main St"] = "Franklin County"
	f.routes.Regions["200 Clinic Way"] = "Franklin County"

	classifier := geo.NewAllowListClassifier("Franklin County", nil)
	resolver := service.NewResolverService(f.routes, classifier, nil)
	pricing := service.NewPricingEngine(config.LoadPricing())
	payments := service.NewPaymentService(f.attemptRepo, f.psp, f.locks)

	f.trips = service.NewTripService(f.tripRepo, f.userRepo, resolver, pricing, payments, nil)
	return f
}

func (f *lifecycleFixture) addClient(id string, veteran bool) {
	f.userRepo.AddUser(&domain.User{
		ID:            id,
		Name:          "Pat",
		Phone:         "555-0100",
		Role:          domain.RoleClient,
		Veteran:       veteran,
		InstrumentRef: "card-" + id,
	})
}

func (f *lifecycleFixture) createTrip(t *testing.T, clientID string) *domain.Trip {
	t.Helper()
	trip, err := f.trips.CreateTrip(context.Background(), service.CreateTripInput{
		ClientID: clientID,
		Request:  defaultRequest(),
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}
	return trip
}

func TestLifecycle_CreateTripPricesAndPersists(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)

	trip := f.createTrip(t, "client-1")

	if trip.Status != domain.TripStatusPending {
		t.Errorf("expected pending, got %s", trip.Status)
	}
	if trip.PaymentStatus != domain.PaymentStatusUnset {
		t.Errorf("expected payment unset, got %s", trip.PaymentStatus)
	}
	if trip.Price != 72.00 {
		t.Errorf("expected price 72.00, got %.2f", trip.Price)
	}
	if trip.InstrumentRef != "card-client-1" {
		t.Errorf("expected instrument copied from profile, got %q", trip.InstrumentRef)
	}
	if f.tripRepo.CountTrips() != 1 {
		t.Errorf("expected 1 persisted trip, got %d", f.tripRepo.CountTrips())
	}
}

func TestLifecycle_VeteranProfileFlagWins(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("vet-1", true)

	// The form did not claim veteran status; the profile does.
	trip, err := f.trips.CreateTrip(context.Background(), service.CreateTripInput{
		ClientID: "vet-1",
		Request:  defaultRequest(),
	})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	// Subtotal 80 at 20% discount.
	if trip.Price != 64.00 {
		t.Errorf("expected veteran price 64.00, got %.2f", trip.Price)
	}
}

func TestLifecycle_CreateTripUnknownClient(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()

	_, err := f.trips.CreateTrip(context.Background(), service.CreateTripInput{
		ClientID: "ghost",
		Request:  defaultRequest(),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLifecycle_ApproveChargesAndAdvances(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)
	trip := f.createTrip(t, "client-1")

	approved, err := f.trips.Approve(context.Background(), trip.ID, service.Actor{ID: "disp-1", Role: domain.RoleDispatcher})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if approved.Status != domain.TripStatusPaidInProgress {
		t.Errorf("expected paid_in_progress, got %s", approved.Status)
	}
	if approved.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("expected paid, got %s", approved.PaymentStatus)
	}
	if approved.ChargedAt.IsZero() {
		t.Error("expected charged_at to be set")
	}
	if f.psp.LastChargeAmount != trip.Price {
		t.Errorf("expected charge of %.2f, got %.2f", trip.Price, f.psp.LastChargeAmount)
	}
	if f.attemptRepo.CountAttempts(trip.ID) != 1 {
		t.Errorf("expected 1 payment attempt, got %d", f.attemptRepo.CountAttempts(trip.ID))
	}
}

func TestLifecycle_DeclinedChargeRetainsReason(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)
	trip := f.createTrip(t, "client-1")

	f.psp.ChargeError = &service.DeclinedError{Reason: "insufficient funds"}

	failed, err := f.trips.Approve(context.Background(), trip.ID, service.Actor{ID: "disp-1", Role: domain.RoleDispatcher})
	if err != nil {
		t.Fatalf("a decline is an outcome, not an error: %v", err)
	}

	if failed.Status != domain.TripStatusPaymentFailed {
		t.Errorf("expected payment_failed, got %s", failed.Status)
	}
	if failed.PaymentStatus != domain.PaymentStatusFailed {
		t.Errorf("expected failed, got %s", failed.PaymentStatus)
	}
	if failed.PaymentFailureReason != "insufficient funds" {
		t.Errorf("expected provider reason verbatim, got %q", failed.PaymentFailureReason)
	}
	if !failed.ChargedAt.IsZero() {
		t.Error("charged_at must stay unset after a decline")
	}

	// An explicit retry succeeds once the provider recovers.
	f.psp.ChargeError = nil
	retried, err := f.trips.RetryPayment(context.Background(), trip.ID, service.Actor{ID: "client-1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retried.Status != domain.TripStatusPaidInProgress {
		t.Errorf("expected paid_in_progress after retry, got %s", retried.Status)
	}
	if retried.PaymentFailureReason != "" {
		t.Errorf("expected failure reason cleared, got %q", retried.PaymentFailureReason)
	}
	if f.attemptRepo.CountAttempts(trip.ID) != 2 {
		t.Errorf("expected 2 attempts on the audit trail, got %d", f.attemptRepo.CountAttempts(trip.ID))
	}
}

func TestLifecycle_CompleteStampsTimestamp(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)
	trip := f.createTrip(t, "client-1")

	dispatcher := service.Actor{ID: "disp-1", Role: domain.RoleDispatcher}

	if _, err := f.trips.Approve(context.Background(), trip.ID, dispatcher); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.trips.MarkInProgress(context.Background(), trip.ID, dispatcher); err != nil {
		t.Fatalf("start: %v", err)
	}

	completed, err := f.trips.Complete(context.Background(), trip.ID, service.Actor{ID: "drv-1", Role: domain.RoleDriver})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if completed.Status != domain.TripStatusCompleted {
		t.Errorf("expected completed, got %s", completed.Status)
	}
	if completed.CompletedAt.IsZero() {
		t.Error("expected completed_at to be set")
	}
}

func TestLifecycle_RateCompletedTrip(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)
	trip := f.createTrip(t, "client-1")

	dispatcher := service.Actor{ID: "disp-1", Role: domain.RoleDispatcher}
	ownerActor := service.Actor{ID: "client-1", Role: domain.RoleClient}

	if _, err := f.trips.Approve(context.Background(), trip.ID, dispatcher); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := f.trips.Complete(context.Background(), trip.ID, dispatcher); err != nil {
		t.Fatalf("complete: %v", err)
	}

	rated, err := f.trips.Rate(context.Background(), trip.ID, ownerActor, 5, "right on time")
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.Rating != 5 || rated.Review != "right on time" {
		t.Errorf("expected rating stored, got %d %q", rated.Rating, rated.Review)
	}
	if rated.Status != domain.TripStatusCompleted {
		t.Errorf("rating must not change status, got %s", rated.Status)
	}

	// A second rating is rejected and the original survives.
	if _, err := f.trips.Rate(context.Background(), trip.ID, ownerActor, 1, "changed my mind"); !errors.Is(err, service.ErrAlreadyRated) {
		t.Errorf("expected ErrAlreadyRated, got %v", err)
	}
	stored := f.tripRepo.GetTrip(trip.ID)
	if stored.Rating != 5 {
		t.Errorf("expected original rating retained, got %d", stored.Rating)
	}
}

func TestLifecycle_CancelBeforePickupDayRefundsFully(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)

	// Pickup far in the future so "now" is strictly before the pickup day.
	req := defaultRequest()
	req.PickupAt = time.Now().AddDate(0, 0, 7)
	trip, err := f.trips.CreateTrip(context.Background(), service.CreateTripInput{ClientID: "client-1", Request: req})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	dispatcher := service.Actor{ID: "disp-1", Role: domain.RoleDispatcher}
	if _, err := f.trips.Approve(context.Background(), trip.ID, dispatcher); err != nil {
		t.Fatalf("approve: %v", err)
	}

	cancelled, err := f.trips.Cancel(context.Background(), trip.ID, service.Actor{ID: "client-1", Role: domain.RoleClient}, "feeling better")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if cancelled.Status != domain.TripStatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.PaymentStatus != domain.PaymentStatusRefunded {
		t.Errorf("expected refunded, got %s", cancelled.PaymentStatus)
	}
	if cancelled.RefundedAmount != trip.Price {
		t.Errorf("expected full refund %.2f, got %.2f", trip.Price, cancelled.RefundedAmount)
	}
	if cancelled.CancelReason != "feeling better" {
		t.Errorf("expected reason stored, got %q", cancelled.CancelReason)
	}
	if f.psp.LastRefundAmount != trip.Price {
		t.Errorf("expected provider refund %.2f, got %.2f", trip.Price, f.psp.LastRefundAmount)
	}
}

func TestLifecycle_SameDayCancelWithholdsBaseFare(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)

	// Pickup now: the cancellation lands on the pickup day.
	req := defaultRequest()
	req.PickupAt = time.Now()
	trip, err := f.trips.CreateTrip(context.Background(), service.CreateTripInput{ClientID: "client-1", Request: req})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	dispatcher := service.Actor{ID: "disp-1", Role: domain.RoleDispatcher}
	if _, err := f.trips.Approve(context.Background(), trip.ID, dispatcher); err != nil {
		t.Fatalf("approve: %v", err)
	}

	cancelled, err := f.trips.Cancel(context.Background(), trip.ID, dispatcher, "no-show")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	want := trip.Price - 50.00 // one-leg standard base fare withheld
	if cancelled.RefundedAmount != want {
		t.Errorf("expected refund %.2f, got %.2f", want, cancelled.RefundedAmount)
	}
	if cancelled.PaymentStatus != domain.PaymentStatusRefunded {
		t.Errorf("expected refunded, got %s", cancelled.PaymentStatus)
	}
}

func TestLifecycle_CancelUnpaidTripSkipsRefund(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)
	trip := f.createTrip(t, "client-1")

	cancelled, err := f.trips.Cancel(context.Background(), trip.ID, service.Actor{ID: "client-1", Role: domain.RoleClient}, "")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if cancelled.PaymentStatus != domain.PaymentStatusUnset {
		t.Errorf("expected payment status untouched, got %s", cancelled.PaymentStatus)
	}
	if cancelled.RefundedAmount != 0 {
		t.Errorf("expected no refund, got %.2f", cancelled.RefundedAmount)
	}
	if count := f.psp.RefundCallCount; count != 0 {
		t.Errorf("expected no provider refund call, got %d", count)
	}
}

func TestLifecycle_FailedRefundAbortsCancellation(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)

	req := defaultRequest()
	req.PickupAt = time.Now().AddDate(0, 0, 7)
	trip, err := f.trips.CreateTrip(context.Background(), service.CreateTripInput{ClientID: "client-1", Request: req})
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	dispatcher := service.Actor{ID: "disp-1", Role: domain.RoleDispatcher}
	if _, err := f.trips.Approve(context.Background(), trip.ID, dispatcher); err != nil {
		t.Fatalf("approve: %v", err)
	}

	f.psp.RefundError = &service.DeclinedError{Reason: "instrument expired"}

	_, err = f.trips.Cancel(context.Background(), trip.ID, dispatcher, "")
	if !errors.Is(err, service.ErrRefundFailed) {
		t.Fatalf("expected ErrRefundFailed, got %v", err)
	}

	// The trip stays paid and live so the cancellation can be retried.
	stored := f.tripRepo.GetTrip(trip.ID)
	if stored.Status == domain.TripStatusCancelled {
		t.Error("trip must not be cancelled after a failed refund")
	}
	if stored.PaymentStatus != domain.PaymentStatusPaid {
		t.Errorf("expected payment still paid, got %s", stored.PaymentStatus)
	}
}

func TestLifecycle_ClientReadsAreOwnerScoped(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)
	f.addClient("client-2", false)
	trip := f.createTrip(t, "client-1")

	if _, err := f.trips.GetTrip(context.Background(), trip.ID, service.Actor{ID: "client-2", Role: domain.RoleClient}); !errors.Is(err, service.ErrNotTripOwner) {
		t.Errorf("expected ErrNotTripOwner, got %v", err)
	}

	// The dispatcher sees everything.
	if _, err := f.trips.GetTrip(context.Background(), trip.ID, service.Actor{ID: "disp-1", Role: domain.RoleDispatcher}); err != nil {
		t.Errorf("expected dispatcher read to succeed, got %v", err)
	}
}

func TestLifecycle_ListTripsFiltersByRole(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)
	f.addClient("client-2", false)
	f.createTrip(t, "client-1")
	f.createTrip(t, "client-2")

	mine, err := f.trips.ListTrips(context.Background(), service.Actor{ID: "client-1", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(mine) != 1 || mine[0].ClientID != "client-1" {
		t.Errorf("expected only own trips, got %d", len(mine))
	}

	all, err := f.trips.ListTrips(context.Background(), service.Actor{ID: "disp-1", Role: domain.RoleDispatcher})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 trips for dispatcher, got %d", len(all))
	}
}

func TestLifecycle_UpdateFailureSurfaces(t *testing.T) {
	t.Parallel()

	f := newLifecycleFixture()
	f.addClient("client-1", false)
	trip := f.createTrip(t, "client-1")

	f.tripRepo.UpdateError = errors.New("connection reset")

	_, err := f.trips.Approve(context.Background(), trip.ID, service.Actor{ID: "disp-1", Role: domain.RoleDispatcher})
	if err == nil {
		t.Fatal("expected persistence error to surface")
	}
}
