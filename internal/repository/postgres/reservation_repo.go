package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusticketing/internal/domain"
)

// reservationRepository implements the compound atomic operations that keep
// the event capacity counter and the ticket table consistent. Each method is
// one transaction: either every write lands or none does.
type reservationRepository struct {
	DB *sql.DB
}

func NewReservationRepository(db *sql.DB) domain.ReservationRepository {
	return &reservationRepository{DB: db}
}

func (r *reservationRepository) Reserve(ctx context.Context, eventID string, t *domain.Ticket) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reserve tx: %w", err)
	}
	defer tx.Rollback()

	// The decrement is the gate: it only succeeds while capacity remains and
	// the event still sells. Two racing callers contend on the row lock here,
	// so at most available_tickets of them can ever get through.
	decrement := `
		UPDATE events
		SET available_tickets = available_tickets - 1, updated_at = NOW()
		WHERE id = $1 AND status <> $2 AND available_tickets > 0
		RETURNING price
	`
	err = tx.QueryRowContext(ctx, decrement, eventID, domain.EventCancelled).Scan(&t.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.classifyReserveMiss(ctx, tx, eventID)
		}
		return fmt.Errorf("decrement available tickets: %w", err)
	}

	insert := `
		INSERT INTO tickets (id, event_id, user_id, ticket_number, price, status, expires_at, checked_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $8)
	`
	_, err = tx.ExecContext(ctx, insert,
		t.ID, t.EventID, t.UserID, t.TicketNumber, t.Price, t.Status, t.ExpiresAt, t.CreatedAt,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reserve tx: %w", err)
	}
	return nil
}

// classifyReserveMiss reads the event row inside the same transaction to
// report why the conditional decrement matched nothing.
func (r *reservationRepository) classifyReserveMiss(ctx context.Context, tx *sql.Tx, eventID string) error {
	var status domain.EventStatus
	var available int
	err := tx.QueryRowContext(ctx, `SELECT status, available_tickets FROM events WHERE id = $1`, eventID).
		Scan(&status, &available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("classify reserve failure: %w", err)
	}
	if status == domain.EventCancelled {
		return domain.ErrEventCancelled
	}
	if available < 1 {
		return domain.ErrCapacityExhausted
	}
	// Counter was replenished between the two statements; let the caller retry.
	return domain.ErrConflict
}

func (r *reservationRepository) ExpireTicket(ctx context.Context, ticketID string) error {
	flip := `
		UPDATE tickets SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING event_id
	`
	return r.releaseTx(ctx, flip, domain.TicketExpired, ticketID, func(ctx context.Context, tx *sql.Tx) error {
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id = $1)`, ticketID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInvalidState
	})
}

func (r *reservationRepository) CancelTicket(ctx context.Context, ticketID, userID string) error {
	flip := `
		UPDATE tickets SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3 AND user_id = $4
		RETURNING event_id
	`
	return r.releaseTx(ctx, flip, domain.TicketCancelled, ticketID, func(ctx context.Context, tx *sql.Tx) error {
		var ownerID string
		err := tx.QueryRowContext(ctx, `SELECT user_id FROM tickets WHERE id = $1`, ticketID).Scan(&ownerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if ownerID != userID {
			return domain.ErrForbidden
		}
		return domain.ErrInvalidState
	}, userID)
}

// releaseTx runs the status flip and the capacity release as one transaction.
// flipQuery must target pending tickets only and RETURNING event_id; classify
// explains a zero-row flip. Extra args follow the new status and ticket id.
func (r *reservationRepository) releaseTx(ctx context.Context, flipQuery string, to domain.TicketStatus, ticketID string, classify func(context.Context, *sql.Tx) error, extraArgs ...interface{}) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin release tx: %w", err)
	}
	defer tx.Rollback()

	args := append([]interface{}{to, ticketID, domain.TicketPending}, extraArgs...)
	var eventID string
	err = tx.QueryRowContext(ctx, flipQuery, args...).Scan(&eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return classify(ctx, tx)
		}
		return fmt.Errorf("flip ticket status: %w", err)
	}

	release := `
		UPDATE events
		SET available_tickets = available_tickets + 1, updated_at = NOW()
		WHERE id = $1 AND available_tickets < total_tickets
	`
	result, err := tx.ExecContext(ctx, release, eventID)
	if err != nil {
		return fmt.Errorf("release capacity: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Counter already at total while a pending ticket existed; refuse to
		// push it past capacity and keep the ticket pending for inspection.
		return domain.ErrConflict
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit release tx: %w", err)
	}
	return nil
}
