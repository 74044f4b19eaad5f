package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libly/library-lending/internal/lib/errs"
)

func TestStorage_RegisterUser(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantID    int64
		wantErr   error
	}{
		{
			name: "successful registration",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users.*RETURNING id`).
					WithArgs("reader", "hash", false).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
			},
			wantID: 5,
		},
		{
			name: "duplicate username",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users.*RETURNING id`).
					WithArgs("reader", "hash", false).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})
			},
			wantErr: errs.ErrConflict,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users.*RETURNING id`).
					WithArgs("reader", "hash", false).
					WillReturnError(errors.New("connection lost"))
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, mock, cleanup := setupTestStorage(t)
			defer cleanup()
			tt.setupMock(mock)

			id, err := storage.RegisterUser(context.Background(), "reader", "hash", false)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantID != 0:
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			default:
				assert.Error(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStorage_EnsureUser(t *testing.T) {
	storage, mock, cleanup := setupTestStorage(t)
	defer cleanup()

	// Повторный вызов с занятым именем тоже успешен: ON CONFLICT DO
	// NOTHING просто не вставляет строку.
	mock.ExpectExec(`INSERT INTO users.*ON CONFLICT \(username\) DO NOTHING`).
		WithArgs("admin", "hash", true).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := storage.EnsureUser(context.Background(), "admin", "hash", true)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetUserByUsername(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		setupMock func(sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name:     "user found",
			username: "reader",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "is_admin"}).
					AddRow(5, "reader", "hash", false)
				mock.ExpectQuery(`SELECT.*FROM users.*WHERE username = \$1`).
					WithArgs("reader").WillReturnRows(rows)
			},
		},
		{
			name:     "user not found",
			username: "ghost",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT.*FROM users.*WHERE username = \$1`).
					WithArgs("ghost").
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "is_admin"}))
			},
			wantErr: errs.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, mock, cleanup := setupTestStorage(t)
			defer cleanup()
			tt.setupMock(mock)

			user, err := storage.GetUserByUsername(context.Background(), tt.username)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.username, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestStorage_ListUsers(t *testing.T) {
	storage, mock, cleanup := setupTestStorage(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "username", "is_admin", "borrowed_count"}).
		AddRow(1, "admin", true, 0).
		AddRow(2, "reader", false, 2)

	mock.ExpectQuery(`SELECT.*FROM users u.*ORDER BY lower\(u\.username\)`).
		WillReturnRows(rows)

	users, err := storage.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, 2, users[1].BorrowedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_DeleteUserWithBooks(t *testing.T) {
	t.Run("releases books and deletes user in one transaction", func(t *testing.T) {
		storage, mock, cleanup := setupTestStorage(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE books.*SET is_borrowed = FALSE.*WHERE borrowed_by = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		released, err := storage.DeleteUserWithBooks(context.Background(), 5)
		require.NoError(t, err)
		assert.Equal(t, int64(2), released)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when user does not exist", func(t *testing.T) {
		storage, mock, cleanup := setupTestStorage(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE books.*SET is_borrowed = FALSE.*WHERE borrowed_by = \$1`).
			WithArgs(int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := storage.DeleteUserWithBooks(context.Background(), 99)
		assert.ErrorIs(t, err, errs.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when release fails", func(t *testing.T) {
		storage, mock, cleanup := setupTestStorage(t)
		defer cleanup()

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE books.*SET is_borrowed = FALSE.*WHERE borrowed_by = \$1`).
			WithArgs(int64(5)).
			WillReturnError(errors.New("connection lost"))
		mock.ExpectRollback()

		_, err := storage.DeleteUserWithBooks(context.Background(), 5)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
