package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"campusticketing/internal/domain"
)

var ticketCols = []string{
	"id", "event_id", "user_id", "ticket_number", "price", "status", "expires_at",
	"payment_id", "payment_method", "checked_in", "checked_in_at", "created_at", "updated_at",
}

func ticketRow(status domain.TicketStatus) *sqlmock.Rows {
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(ticketCols).AddRow(
		"ticket-uuid-1", "event-uuid-1", "user-uuid-1", "TICKET-20250201-12345",
		"25.00", status, now.Add(24*time.Hour), nil, nil, false, nil, now, now,
	)
}

func TestTicketRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE id`).
			WithArgs("ticket-uuid-1").
			WillReturnRows(ticketRow(domain.TicketPending))

		repo := NewTicketRepository(db)
		got, err := repo.GetByID(ctx, "ticket-uuid-1")
		require.NoError(t, err)
		require.Equal(t, "TICKET-20250201-12345", got.TicketNumber)
		require.Equal(t, domain.TicketPending, got.Status)
		require.Nil(t, got.PaymentID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE id`).
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		repo := NewTicketRepository(db)
		_, err = repo.GetByID(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTicketRepository_ListByUserWithEvent(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	eventDate := time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)
	cols := append(append([]string{}, ticketCols...), "title", "date", "venue")
	rows := sqlmock.NewRows(cols).
		AddRow("ticket-uuid-1", "event-uuid-1", "user-uuid-1", "TICKET-20250201-12345",
			"25.00", domain.TicketConfirmed, now.Add(24*time.Hour), "pay-1", "card", false, nil, now, now,
			"Spring Concert", eventDate, "Main Hall")

	mock.ExpectQuery(`FROM tickets t(\s+)JOIN events e`).
		WithArgs("user-uuid-1").
		WillReturnRows(rows)

	repo := NewTicketRepository(db)
	got, err := repo.ListByUserWithEvent(ctx, "user-uuid-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Spring Concert", got[0].EventTitle)
	require.Equal(t, "Main Hall", got[0].EventVenue)
	require.Equal(t, domain.TicketConfirmed, got[0].Ticket.Status)
	require.NotNil(t, got[0].Ticket.PaymentID)
	require.Equal(t, "pay-1", *got[0].Ticket.PaymentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_ListExpiredPending(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 2, 2, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id FROM tickets`).
		WithArgs(domain.TicketPending, now, 500).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-1").AddRow("t-2"))

	repo := NewTicketRepository(db)
	ids, err := repo.ListExpiredPending(ctx, now, 500)
	require.NoError(t, err)
	require.Equal(t, []string{"t-1", "t-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketRepository_Confirm(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 2, 1, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WithArgs(domain.TicketConfirmed, "pay-1", domain.PaymentCard, now, "ticket-uuid-1", "user-uuid-1", domain.TicketPending).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "someone else's ticket",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				rows := sqlmock.NewRows(ticketCols).AddRow(
					"ticket-uuid-1", "event-uuid-1", "other-user", "TICKET-20250201-12345",
					"25.00", domain.TicketPending, now.Add(24*time.Hour), nil, nil, false, nil, now, now,
				)
				mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE id`).
					WithArgs("ticket-uuid-1").
					WillReturnRows(rows)
			},
			wantErr: true,
			errIs:   domain.ErrForbidden,
		},
		{
			name: "already expired",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				rows := sqlmock.NewRows(ticketCols).AddRow(
					"ticket-uuid-1", "event-uuid-1", "user-uuid-1", "TICKET-20250201-12345",
					"25.00", domain.TicketExpired, now.Add(-time.Hour), nil, nil, false, nil, now, now,
				)
				mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE id`).
					WithArgs("ticket-uuid-1").
					WillReturnRows(rows)
			},
			wantErr: true,
			errIs:   domain.ErrInvalidState,
		},
		{
			name: "missing ticket",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE tickets`).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE id`).
					WithArgs("ticket-uuid-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
			errIs:   domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewTicketRepository(db)
			err = repo.Confirm(ctx, "ticket-uuid-1", "user-uuid-1", "pay-1", domain.PaymentCard, now)
			if tt.wantErr {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestTicketRepository_CheckIn(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE tickets`).
			WithArgs(domain.TicketUsed, now, "TICKET-20250201-12345", domain.TicketConfirmed).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewTicketRepository(db)
		require.NoError(t, repo.CheckIn(ctx, "TICKET-20250201-12345", now))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pending ticket cannot check in", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE tickets`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE ticket_number`).
			WithArgs("TICKET-20250201-12345").
			WillReturnRows(ticketRow(domain.TicketPending))

		repo := NewTicketRepository(db)
		err = repo.CheckIn(ctx, "TICKET-20250201-12345", now)
		require.ErrorIs(t, err, domain.ErrInvalidState)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown ticket number", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE tickets`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT (.+) FROM tickets WHERE ticket_number`).
			WithArgs("TICKET-00000000-00000").
			WillReturnError(sql.ErrNoRows)

		repo := NewTicketRepository(db)
		err = repo.CheckIn(ctx, "TICKET-00000000-00000", now)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
