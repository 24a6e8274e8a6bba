package repository

import (
	"context"

	"nemt/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetByClientID retrieves all trips owned by a client, newest first.
	GetByClientID(ctx context.Context, clientID string) ([]*domain.Trip, error)

	// GetAll retrieves recent trips, newest first.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// Update updates an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error
}
