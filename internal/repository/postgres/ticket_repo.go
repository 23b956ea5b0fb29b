package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campusticketing/internal/domain"
)

type ticketRepository struct {
	DB *sql.DB
}

func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{DB: db}
}

const ticketColumns = `id, event_id, user_id, ticket_number, price, status, expires_at, payment_id, payment_method, checked_in, checked_in_at, created_at, updated_at`

func scanTicket(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Ticket, error) {
	t := &domain.Ticket{}
	var paymentID, paymentMethod sql.NullString
	var checkedInAt sql.NullTime
	err := row.Scan(
		&t.ID, &t.EventID, &t.UserID, &t.TicketNumber, &t.Price, &t.Status, &t.ExpiresAt,
		&paymentID, &paymentMethod, &t.CheckedIn, &checkedInAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if paymentID.Valid {
		t.PaymentID = &paymentID.String
	}
	if paymentMethod.Valid {
		t.PaymentMethod = &paymentMethod.String
	}
	if checkedInAt.Valid {
		t.CheckedInAt = &checkedInAt.Time
	}
	return t, nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	t, err := scanTicket(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_number = $1`
	t, err := scanTicket(r.DB.QueryRowContext(ctx, query, ticketNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *ticketRepository) ListByUserWithEvent(ctx context.Context, userID string) ([]*domain.TicketWithEvent, error) {
	query := `
		SELECT t.id, t.event_id, t.user_id, t.ticket_number, t.price, t.status, t.expires_at,
		       t.payment_id, t.payment_method, t.checked_in, t.checked_in_at, t.created_at, t.updated_at,
		       e.title, e.date, e.venue
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.TicketWithEvent, 0)
	for rows.Next() {
		t := &domain.Ticket{}
		item := &domain.TicketWithEvent{Ticket: t}
		var paymentID, paymentMethod sql.NullString
		var checkedInAt sql.NullTime
		if err := rows.Scan(
			&t.ID, &t.EventID, &t.UserID, &t.TicketNumber, &t.Price, &t.Status, &t.ExpiresAt,
			&paymentID, &paymentMethod, &t.CheckedIn, &checkedInAt, &t.CreatedAt, &t.UpdatedAt,
			&item.EventTitle, &item.EventDate, &item.EventVenue,
		); err != nil {
			return nil, err
		}
		if paymentID.Valid {
			t.PaymentID = &paymentID.String
		}
		if paymentMethod.Valid {
			t.PaymentMethod = &paymentMethod.String
		}
		if checkedInAt.Valid {
			t.CheckedInAt = &checkedInAt.Time
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *ticketRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error) {
	query := `
		SELECT id FROM tickets
		WHERE status = $1 AND expires_at <= $2
		ORDER BY expires_at ASC
		LIMIT $3
	`
	rows, err := r.DB.QueryContext(ctx, query, domain.TicketPending, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ticketRepository) Confirm(ctx context.Context, id, userID, paymentID, paymentMethod string, now time.Time) error {
	query := `
		UPDATE tickets
		SET status = $1, payment_id = $2, payment_method = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6 AND status = $7
	`
	result, err := r.DB.ExecContext(ctx, query,
		domain.TicketConfirmed, paymentID, paymentMethod, now, id, userID, domain.TicketPending,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return r.classifyMiss(ctx, id, userID)
	}
	return nil
}

func (r *ticketRepository) CheckIn(ctx context.Context, ticketNumber string, now time.Time) error {
	query := `
		UPDATE tickets
		SET status = $1, checked_in = TRUE, checked_in_at = $2, updated_at = $2
		WHERE ticket_number = $3 AND status = $4
	`
	result, err := r.DB.ExecContext(ctx, query, domain.TicketUsed, now, ticketNumber, domain.TicketConfirmed)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := r.GetByNumber(ctx, ticketNumber); err != nil {
			return err
		}
		return domain.ErrInvalidState
	}
	return nil
}

// classifyMiss turns a zero-row conditional update into the sentinel the
// caller can act on: missing ticket, someone else's ticket, or wrong status.
func (r *ticketRepository) classifyMiss(ctx context.Context, id, userID string) error {
	t, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.UserID != userID {
		return domain.ErrForbidden
	}
	return domain.ErrInvalidState
}
