package postgres

import (
	"context"
	"database/sql"
	"errors"

	"nemt/internal/domain"
	"nemt/internal/repository"
)

// PaymentAttemptRepository is a PostgreSQL implementation of
// repository.PaymentAttemptRepository.
type PaymentAttemptRepository struct {
	q Querier
}

// NewPaymentAttemptRepository creates a new PostgreSQL payment attempt repository.
func NewPaymentAttemptRepository(db *sql.DB) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{q: db}
}

// NewPaymentAttemptRepositoryWithTx creates a payment attempt repository using a transaction.
func NewPaymentAttemptRepositoryWithTx(tx *sql.Tx) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{q: tx}
}

const attemptColumns = `
	id, trip_id, kind, amount, instrument_ref, succeeded, failure_reason, provider_txn_id, created_at
`

// Create persists a new payment attempt.
func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *domain.PaymentAttempt) error {
	query := `
		INSERT INTO payment_attempts (` + attemptColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		attempt.ID,
		attempt.TripID,
		string(attempt.Kind),
		attempt.Amount,
		nullString(attempt.InstrumentRef),
		attempt.Succeeded,
		nullString(attempt.FailureReason),
		nullString(attempt.ProviderTxnID),
		attempt.CreatedAt,
	)

	return err
}

// GetByID retrieves a payment attempt by ID.
func (r *PaymentAttemptRepository) GetByID(ctx context.Context, id string) (*domain.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE id = $1`

	attempt, err := scanAttempt(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return attempt, nil
}

// ListByTripID retrieves all attempts for a trip, oldest first.
func (r *PaymentAttemptRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.PaymentAttempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM payment_attempts WHERE trip_id = $1 ORDER BY created_at ASC`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []*domain.PaymentAttempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}

	return attempts, rows.Err()
}

// scanAttempt scans one payment_attempts row.
func scanAttempt(row rowScanner) (*domain.PaymentAttempt, error) {
	var (
		attempt       domain.PaymentAttempt
		kind          string
		instrumentRef sql.NullString
		failureReason sql.NullString
		providerTxnID sql.NullString
	)

	err := row.Scan(
		&attempt.ID,
		&attempt.TripID,
		&kind,
		&attempt.Amount,
		&instrumentRef,
		&attempt.Succeeded,
		&failureReason,
		&providerTxnID,
		&attempt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	attempt.Kind = domain.PaymentKind(kind)
	attempt.InstrumentRef = instrumentRef.String
	attempt.FailureReason = failureReason.String
	attempt.ProviderTxnID = providerTxnID.String

	return &attempt, nil
}

// Ensure PaymentAttemptRepository implements repository.PaymentAttemptRepository.
var _ repository.PaymentAttemptRepository = (*PaymentAttemptRepository)(nil)
