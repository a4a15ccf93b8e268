package repository

import (
	"context"
	"database/sql"

	apperrors "ovation/internal/errors"

	"ovation/internal/database"
	"ovation/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (title, description, event_type, datetime_start, published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.EventType,
		event.DatetimeStart,
		event.Published,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range event.TicketClasses {
		tc := &event.TicketClasses[i]
		tc.EventID = event.ID

		classQuery := `
			INSERT INTO ticket_classes (event_id, name, price, quantity)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at`

		err = tx.QueryRowContext(ctx, classQuery,
			tc.EventID, tc.Name, tc.Price, tc.Quantity,
		).Scan(&tc.ID, &tc.CreatedAt, &tc.UpdatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, title, description, event_type, datetime_start, published, created_at, updated_at
		FROM events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.EventType,
		&event.DatetimeStart,
		&event.Published,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	classes, err := r.getTicketClasses(ctx, id)
	if err != nil {
		return nil, err
	}
	event.TicketClasses = classes

	return event, nil
}

func (r *EventRepository) List(ctx context.Context, page, pageSize int) ([]models.Event, error) {
	var events []models.Event
	query := `
		SELECT id, title, description, event_type, datetime_start, published, created_at, updated_at
		FROM events
		ORDER BY datetime_start
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Description,
			&event.EventType,
			&event.DatetimeStart,
			&event.Published,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// UpdateDetails applies the allow-listed post-publish edits. Ticket class
// price and quantity changes are not accepted here.
func (r *EventRepository) UpdateDetails(ctx context.Context, id int64, title *string, description *string) error {
	query := `
		UPDATE events
		SET title = COALESCE($1, title),
		    description = COALESCE($2, description),
		    updated_at = NOW()
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, title, description, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrEventNotFound
	}

	return nil
}

func (r *EventRepository) getTicketClasses(ctx context.Context, eventID int64) ([]models.TicketClass, error) {
	var classes []models.TicketClass
	query := `
		SELECT id, event_id, name, price, quantity, created_at, updated_at
		FROM ticket_classes
		WHERE event_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tc models.TicketClass
		err := rows.Scan(
			&tc.ID,
			&tc.EventID,
			&tc.Name,
			&tc.Price,
			&tc.Quantity,
			&tc.CreatedAt,
			&tc.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		classes = append(classes, tc)
	}

	return classes, rows.Err()
}

func (r *EventRepository) GetTicketClass(ctx context.Context, eventID int64, name string) (*models.TicketClass, error) {
	tc := &models.TicketClass{}
	query := `
		SELECT id, event_id, name, price, quantity, created_at, updated_at
		FROM ticket_classes
		WHERE event_id = $1 AND name = $2`

	err := r.db.QueryRowContext(ctx, query, eventID, name).Scan(
		&tc.ID,
		&tc.EventID,
		&tc.Name,
		&tc.Price,
		&tc.Quantity,
		&tc.CreatedAt,
		&tc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return tc, err
}

// ReserveTickets atomically decrements the available quantity for a ticket
// class. The quantity >= qty guard in the WHERE clause is what makes
// concurrent reservations safe; a plain read-modify-write would lose
// updates and oversell.
func (r *EventRepository) ReserveTickets(ctx context.Context, eventID int64, name string, qty int) error {
	query := `
		UPDATE ticket_classes
		SET quantity = quantity - $3, updated_at = NOW()
		WHERE event_id = $1 AND name = $2 AND quantity >= $3`

	result, err := r.db.ExecContext(ctx, query, eventID, name, qty)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	// Distinguish an unknown class from an exhausted one
	tc, err := r.GetTicketClass(ctx, eventID, name)
	if err != nil {
		return err
	}
	if tc == nil {
		return apperrors.ErrTicketTypeNotFound
	}
	return apperrors.ErrInsufficientInventory
}

// ReleaseTickets restores quantity after a cancellation or payment failure.
// Callers gate this on a booking status transition so a given booking is
// never credited twice.
func (r *EventRepository) ReleaseTickets(ctx context.Context, eventID int64, name string, qty int) error {
	query := `
		UPDATE ticket_classes
		SET quantity = quantity + $3, updated_at = NOW()
		WHERE event_id = $1 AND name = $2`

	result, err := r.db.ExecContext(ctx, query, eventID, name, qty)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrTicketTypeNotFound
	}

	return nil
}
