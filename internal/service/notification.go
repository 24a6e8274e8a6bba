package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"nemt/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationTripCreated    NotificationType = "TRIP_CREATED"
	NotificationPaymentSuccess NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed  NotificationType = "PAYMENT_FAILED"
	NotificationTripInProgress NotificationType = "TRIP_IN_PROGRESS"
	NotificationTripCompleted  NotificationType = "TRIP_COMPLETED"
	NotificationTripCancelled  NotificationType = "TRIP_CANCELLED"
)

// Notification represents a status-change message for a subscriber.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService delivers best-effort, at-most-once status-change
// notifications. Delivery never blocks a transition: callers discard
// the error.
type NotificationService struct {
	// In a real system, this would hold:
	// - Push notification client
	// - SMS/email clients
	// - WebSocket connections for the live dispatcher dashboard
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyTripCreated notifies the client that their booking was priced
// and is awaiting dispatcher approval.
func (s *NotificationService) NotifyTripCreated(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripCreated,
		RecipientID: trip.ClientID,
		Title:       "Ride Requested",
		Message:     fmt.Sprintf("Your ride is booked pending approval. Estimated total: $%.2f", trip.Price),
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"total":   trip.Price,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentSuccess notifies the client their trip was approved and
// charged.
func (s *NotificationService) NotifyPaymentSuccess(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentSuccess,
		RecipientID: trip.ClientID,
		Title:       "Ride Approved",
		Message:     fmt.Sprintf("Your ride was approved and $%.2f was charged.", trip.Price),
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"amount":  trip.Price,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentFailed notifies the client their payment was declined.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: trip.ClientID,
		Title:       "Payment Failed",
		Message:     fmt.Sprintf("Payment of $%.2f failed: %s. Please retry.", trip.Price, trip.PaymentFailureReason),
		Data: map[string]interface{}{
			"trip_id": trip.ID,
			"reason":  trip.PaymentFailureReason,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripInProgress notifies the client their ride is underway.
func (s *NotificationService) NotifyTripInProgress(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripInProgress,
		RecipientID: trip.ClientID,
		Title:       "Ride In Progress",
		Message:     "Your ride is underway.",
		Data: map[string]interface{}{
			"trip_id": trip.ID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripCompleted notifies the client their ride is complete.
func (s *NotificationService) NotifyTripCompleted(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripCompleted,
		RecipientID: trip.ClientID,
		Title:       "Ride Completed",
		Message:     "Your ride is complete. You can now rate your experience.",
		Data: map[string]interface{}{
			"trip_id":      trip.ID,
			"completed_at": trip.CompletedAt,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripCancelled notifies the client of a cancellation and any
// refund issued.
func (s *NotificationService) NotifyTripCancelled(ctx context.Context, trip *domain.Trip) error {
	message := "Your ride was cancelled."
	if trip.RefundedAmount > 0 {
		message = fmt.Sprintf("Your ride was cancelled and $%.2f was refunded.", trip.RefundedAmount)
	} else if trip.PaymentStatus == domain.PaymentStatusPaid {
		message = "Your ride was cancelled. No refund applies for same-day cancellations below the base fare."
	}

	return s.send(ctx, Notification{
		Type:        NotificationTripCancelled,
		RecipientID: trip.ClientID,
		Title:       "Ride Cancelled",
		Message:     message,
		Data: map[string]interface{}{
			"trip_id":  trip.ID,
			"refunded": trip.RefundedAmount,
		},
		CreatedAt: time.Now(),
	})
}

// send delivers a notification (mock implementation).
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	// A real implementation would fan out to push/SMS/email and the
	// dispatcher dashboard over WebSocket.
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		notification.Type, notification.RecipientID, notification.Title, notification.Message)

	return nil
}
