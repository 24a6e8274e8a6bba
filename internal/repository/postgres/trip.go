package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"nemt/internal/domain"
	"nemt/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

// tripColumns lists the trips columns in scan order. The originating
// request and resolved route are denormalized onto the row at creation.
const tripColumns = `
	id, client_id, driver_id,
	pickup_address, destination_address, pickup_at, round_trip, return_at,
	wheelchair, wheelchair_rental, weight_lbs, extra_passengers, emergency, veteran,
	pickup_region, destination_region, both_home_region, regions_out, distance_miles, distance_estimated,
	breakdown, price,
	status, payment_status, payment_failure_reason, instrument_ref, refunded_amount,
	rating, review, cancel_reason,
	created_at, approved_at, charged_at, cancelled_at, completed_at, rated_at
`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		        $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36)
	`

	breakdown, err := json.Marshal(trip.Breakdown)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		trip.ID,
		trip.ClientID,
		nullString(trip.DriverID),
		trip.Request.PickupAddress,
		trip.Request.DestinationAddress,
		trip.Request.PickupAt,
		trip.Request.RoundTrip,
		nullTime(trip.Request.ReturnAt),
		string(trip.Request.Wheelchair),
		trip.Request.WheelchairRental,
		trip.Request.WeightLbs,
		trip.Request.ExtraPassengers,
		trip.Request.Emergency,
		trip.Request.Veteran,
		trip.Region.PickupRegion,
		trip.Region.DestinationRegion,
		trip.Region.BothHomeRegion,
		trip.Region.RegionsOut,
		trip.Region.DistanceMiles,
		trip.Region.DistanceEstimated,
		breakdown,
		trip.Price,
		string(trip.Status),
		string(trip.PaymentStatus),
		nullString(trip.PaymentFailureReason),
		nullString(trip.InstrumentRef),
		trip.RefundedAmount,
		trip.Rating,
		nullString(trip.Review),
		nullString(trip.CancelReason),
		trip.CreatedAt,
		nullTime(trip.ApprovedAt),
		nullTime(trip.ChargedAt),
		nullTime(trip.CancelledAt),
		nullTime(trip.CompletedAt),
		nullTime(trip.RatedAt),
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return trip, nil
}

// GetByClientID retrieves all trips owned by a client, newest first.
func (r *TripRepository) GetByClientID(ctx context.Context, clientID string) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE client_id = $1 ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

// GetAll retrieves recent trips, newest first.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET driver_id = $1, status = $2, payment_status = $3, payment_failure_reason = $4,
		    refunded_amount = $5, rating = $6, review = $7, cancel_reason = $8,
		    approved_at = $9, charged_at = $10, cancelled_at = $11, completed_at = $12, rated_at = $13
		WHERE id = $14
	`

	result, err := r.q.ExecContext(ctx, query,
		nullString(trip.DriverID),
		string(trip.Status),
		string(trip.PaymentStatus),
		nullString(trip.PaymentFailureReason),
		trip.RefundedAmount,
		trip.Rating,
		nullString(trip.Review),
		nullString(trip.CancelReason),
		nullTime(trip.ApprovedAt),
		nullTime(trip.ChargedAt),
		nullTime(trip.CancelledAt),
		nullTime(trip.CompletedAt),
		nullTime(trip.RatedAt),
		trip.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTrip scans one trips row into a domain.Trip.
func scanTrip(row rowScanner) (*domain.Trip, error) {
	var (
		trip          domain.Trip
		driverID      sql.NullString
		returnAt      sql.NullTime
		wheelchair    string
		breakdown     []byte
		status        string
		paymentStatus string
		failureReason sql.NullString
		instrumentRef sql.NullString
		review        sql.NullString
		cancelReason  sql.NullString
		approvedAt    sql.NullTime
		chargedAt     sql.NullTime
		cancelledAt   sql.NullTime
		completedAt   sql.NullTime
		ratedAt       sql.NullTime
	)

	err := row.Scan(
		&trip.ID,
		&trip.ClientID,
		&driverID,
		&trip.Request.PickupAddress,
		&trip.Request.DestinationAddress,
		&trip.Request.PickupAt,
		&trip.Request.RoundTrip,
		&returnAt,
		&wheelchair,
		&trip.Request.WheelchairRental,
		&trip.Request.WeightLbs,
		&trip.Request.ExtraPassengers,
		&trip.Request.Emergency,
		&trip.Request.Veteran,
		&trip.Region.PickupRegion,
		&trip.Region.DestinationRegion,
		&trip.Region.BothHomeRegion,
		&trip.Region.RegionsOut,
		&trip.Region.DistanceMiles,
		&trip.Region.DistanceEstimated,
		&breakdown,
		&trip.Price,
		&status,
		&paymentStatus,
		&failureReason,
		&instrumentRef,
		&trip.RefundedAmount,
		&trip.Rating,
		&review,
		&cancelReason,
		&trip.CreatedAt,
		&approvedAt,
		&chargedAt,
		&cancelledAt,
		&completedAt,
		&ratedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &trip.Breakdown); err != nil {
			return nil, err
		}
	}

	trip.DriverID = driverID.String
	trip.Request.Wheelchair = domain.WheelchairMode(wheelchair)
	trip.Status = domain.NormalizeStatus(domain.TripStatus(status))
	trip.PaymentStatus = domain.PaymentStatus(paymentStatus)
	trip.PaymentFailureReason = failureReason.String
	trip.InstrumentRef = instrumentRef.String
	trip.Review = review.String
	trip.CancelReason = cancelReason.String

	if returnAt.Valid {
		trip.Request.ReturnAt = returnAt.Time
	}
	if approvedAt.Valid {
		trip.ApprovedAt = approvedAt.Time
	}
	if chargedAt.Valid {
		trip.ChargedAt = chargedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}
	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	if ratedAt.Valid {
		trip.RatedAt = ratedAt.Time
	}

	return &trip, nil
}

// collectTrips drains a result set into a slice.
func collectTrips(rows *sql.Rows) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
