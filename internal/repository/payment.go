package repository

import (
	"context"

	"nemt/internal/domain"
)

// PaymentAttemptRepository defines the persistence operations for
// payment attempts.
type PaymentAttemptRepository interface {
	// Create persists a new payment attempt.
	Create(ctx context.Context, attempt *domain.PaymentAttempt) error

	// GetByID retrieves a payment attempt by ID.
	GetByID(ctx context.Context, id string) (*domain.PaymentAttempt, error)

	// ListByTripID retrieves all attempts for a trip, oldest first.
	ListByTripID(ctx context.Context, tripID string) ([]*domain.PaymentAttempt, error)
}
