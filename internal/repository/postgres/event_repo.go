package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campusticketing/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, description, date, venue, organizer_id, total_tickets, available_tickets, price, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Description, e.Date, e.Venue, e.OrganizerID,
		e.TotalTickets, e.AvailableTickets, e.Price, e.Category, e.Status,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `
		SELECT e.id, e.title, e.description, e.date, e.venue, e.organizer_id, u.name,
		       e.total_tickets, e.available_tickets, e.price, e.category, e.status,
		       e.created_at, e.updated_at
		FROM events e
		JOIN users u ON u.id = e.organizer_id
		WHERE e.id = $1
	`
	e := &domain.Event{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Venue, &e.OrganizerID, &e.OrganizerName,
		&e.TotalTickets, &e.AvailableTickets, &e.Price, &e.Category, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := []string{}
	args := []interface{}{}
	n := 1
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("category = $%d", n))
		args = append(args, filter.Category)
		n++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", n))
		args = append(args, filter.Status)
		n++
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM events %s`, whereClause)
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, date, venue, organizer_id,
		       total_tickets, available_tickets, price, category, status,
		       created_at, updated_at
		FROM events
		%s
		ORDER BY date ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, n, n+1)
	args = append(args, params.PageSize, params.Offset())

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e := &domain.Event{}
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description, &e.Date, &e.Venue, &e.OrganizerID,
			&e.TotalTickets, &e.AvailableTickets, &e.Price, &e.Category, &e.Status,
			&e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) UpdateStatus(ctx context.Context, id string, to domain.EventStatus, allowedFrom []domain.EventStatus) error {
	placeholders := make([]string, len(allowedFrom))
	args := []interface{}{to, id}
	for i, s := range allowedFrom {
		placeholders[i] = fmt.Sprintf("$%d", i+3)
		args = append(args, s)
	}
	query := fmt.Sprintf(`
		UPDATE events SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status IN (%s)
	`, strings.Join(placeholders, ", "))

	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// Either the event is missing or its status forbids the transition.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return domain.ErrInvalidState
	}
	return nil
}
