package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"ovation/internal/database"
	"ovation/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (user_id, event_id, ticket_type, quantity, total_amount, status, paid_at, ticket_numbers)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		booking.UserID,
		booking.EventID,
		booking.TicketType,
		booking.Quantity,
		booking.TotalAmount,
		booking.Status,
		booking.PaidAt,
		pq.Array(booking.TicketNumbers),
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	return err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		SELECT id, user_id, event_id, ticket_type, quantity, total_amount, status,
		       payment_intent_id, paid_at, ticket_numbers, created_at, updated_at
		FROM bookings
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.EventID,
		&booking.TicketType,
		&booking.Quantity,
		&booking.TotalAmount,
		&booking.Status,
		&booking.PaymentIntentID,
		&booking.PaidAt,
		pq.Array(&booking.TicketNumbers),
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT id, user_id, event_id, ticket_type, quantity, total_amount, status,
		       payment_intent_id, paid_at, ticket_numbers, created_at, updated_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.EventID,
			&booking.TicketType,
			&booking.Quantity,
			&booking.TotalAmount,
			&booking.Status,
			&booking.PaymentIntentID,
			&booking.PaidAt,
			pq.Array(&booking.TicketNumbers),
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// SetPaymentIntent attaches a provider intent id to a pending booking.
// Returns false if the booking is no longer pending.
func (r *BookingRepository) SetPaymentIntent(ctx context.Context, id int64, intentID string) (bool, error) {
	query := `
		UPDATE bookings
		SET payment_intent_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, id, intentID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected == 1, err
}

// ConfirmFromPending performs the pending -> confirmed transition. The
// status guard in the WHERE clause makes the first writer win; callers
// decide how to treat a lost race.
func (r *BookingRepository) ConfirmFromPending(ctx context.Context, id int64, intentID string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'confirmed', payment_intent_id = $2, paid_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, id, intentID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected == 1, err
}

// FailFromPending performs the pending -> failed transition.
func (r *BookingRepository) FailFromPending(ctx context.Context, id int64, intentID string) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'failed', payment_intent_id = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, id, intentID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected == 1, err
}

// CancelFromActive cancels a booking that is pending or confirmed and
// reports the status it held before the transition. The row lock keeps the
// read and the update atomic against concurrent webhook deliveries.
func (r *BookingRepository) CancelFromActive(ctx context.Context, id int64) (string, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		return "", false, err
	}

	if current != models.BookingStatusPending && current != models.BookingStatusConfirmed {
		return current, false, tx.Commit()
	}

	_, err = tx.ExecContext(ctx, `UPDATE bookings SET status = 'cancelled', updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return "", false, err
	}

	return current, true, tx.Commit()
}

// CancelFromPending cancels a booking only if it is still pending; the
// expiration job uses it so a concurrently confirmed booking is left alone.
func (r *BookingRepository) CancelFromPending(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	return affected == 1, err
}

// GetExpiredPending retrieves pending bookings created before the cutoff
func (r *BookingRepository) GetExpiredPending(ctx context.Context, cutoff time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT id, user_id, event_id, ticket_type, quantity, total_amount, status,
		       payment_intent_id, paid_at, ticket_numbers, created_at, updated_at
		FROM bookings
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.EventID,
			&booking.TicketType,
			&booking.Quantity,
			&booking.TotalAmount,
			&booking.Status,
			&booking.PaymentIntentID,
			&booking.PaidAt,
			pq.Array(&booking.TicketNumbers),
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
