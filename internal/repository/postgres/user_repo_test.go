package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"campusticketing/internal/domain"
)

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	studentID := "S12345"

	tests := []struct {
		name    string
		user    *domain.User
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
		errIs   error
	}{
		{
			name: "success with student id",
			user: &domain.User{
				Name:      "Alice",
				Email:     "alice@example.com",
				Role:      domain.RoleStudent,
				StudentID: &studentID,
				CreatedAt: time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
				UpdatedAt: time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WithArgs("Alice", "alice@example.com", "", "", domain.RoleStudent, &studentID,
						sqlmock.AnyArg(), sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-uuid-1"))
			},
		},
		{
			name: "duplicate email",
			user: &domain.User{Name: "Bob", Email: "taken@example.com", Role: domain.RoleStudent},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateEmail,
		},
		{
			name: "duplicate student id",
			user: &domain.User{Name: "Bob", Email: "bob@example.com", Role: domain.RoleStudent, StudentID: &studentID},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(&pq.Error{Code: "23505", Constraint: "users_student_id_key"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateStudentID,
		},
		{
			name: "db error",
			user: &domain.User{Name: "Bob", Email: "bob@example.com", Role: domain.RoleStudent},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewUserRepository(db)
			err = repo.Create(ctx, tt.user)
			if tt.wantErr {
				require.Error(t, err)
				if tt.errIs != nil {
					require.ErrorIs(t, err, tt.errIs)
				}
			} else {
				require.NoError(t, err)
				require.Equal(t, "user-uuid-1", tt.user.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	userCols := []string{"id", "name", "email", "password_hash", "salt", "role", "student_id", "created_at", "updated_at"}
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success with null student id", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users(\s+)WHERE email`).
			WithArgs("alice@example.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow("user-uuid-1", "Alice", "alice@example.com", "hash", "salt", domain.RoleAdmin, nil, now, now))

		repo := NewUserRepository(db)
		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, got.Role)
		require.Nil(t, got.StudentID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM users(\s+)WHERE email`).
			WithArgs("missing@example.com").
			WillReturnError(sql.ErrNoRows)

		repo := NewUserRepository(db)
		_, err = repo.GetByEmail(ctx, "missing@example.com")
		require.ErrorIs(t, err, domain.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	userCols := []string{"id", "name", "email", "password_hash", "salt", "role", "student_id", "created_at", "updated_at"}
	now := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM users(\s+)WHERE id`).
		WithArgs("user-uuid-1").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("user-uuid-1", "Alice", "alice@example.com", "hash", "salt", domain.RoleStudent, "S12345", now, now))

	repo := NewUserRepository(db)
	got, err := repo.GetByID(ctx, "user-uuid-1")
	require.NoError(t, err)
	require.NotNil(t, got.StudentID)
	require.Equal(t, "S12345", *got.StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}
