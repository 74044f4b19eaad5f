package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его ID.
// Занятый username отображается в errs.ErrConflict.
func (s *Storage) RegisterUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (username, password_hash, is_admin)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int64
	if err := s.DB.QueryRowContext(ctx, query, username, passwordHash, isAdmin).Scan(&newID); err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%s: %w", op, errs.ErrConflict)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// EnsureUser вставляет пользователя, если имя свободно, и молча
// ничего не делает, если такой username уже есть. Используется для
// первоначального администратора при старте.
func (s *Storage) EnsureUser(ctx context.Context, username, passwordHash string, isAdmin bool) error {
	const op = "storage.EnsureUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (username, password_hash, is_admin)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (username) DO NOTHING`
	if _, err := s.DB.ExecContext(ctx, query, username, passwordHash, isAdmin); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByUsername возвращает пользователя по имени.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, username, password_hash, is_admin
			  FROM users
			  WHERE username = $1`
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей с числом книг на руках.
func (s *Storage) ListUsers(ctx context.Context) ([]models.UserListItem, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.id, u.username, u.is_admin,
			      (SELECT COUNT(*) FROM books b WHERE b.borrowed_by = u.id) AS borrowed_count
			  FROM users u
			  ORDER BY lower(u.username)`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.UserListItem
	for rows.Next() {
		var item models.UserListItem
		if err := rows.Scan(&item.ID, &item.Username, &item.IsAdmin, &item.BorrowedCount); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteUserWithBooks удаляет пользователя одной транзакцией:
// сначала освобождает все его книги, затем удаляет строку users.
//
// Если пользователя нет, транзакция откатывается целиком — частично
// примененное состояние (книги освобождены, пользователь остался)
// снаружи не наблюдаемо. Возвращает число освобожденных книг.
//
// Освобождение намеренно обходит проверку личности читателя из
// ReturnBook: действует администратор, а не заемщик.
func (s *Storage) DeleteUserWithBooks(ctx context.Context, userID int64) (released int64, err error) {
	const op = "storage.DeleteUserWithBooks"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	releaseQuery := `UPDATE books
			  SET is_borrowed = FALSE, borrowed_by = NULL, borrowed_at = NULL, due_date = NULL
			  WHERE borrowed_by = $1`
	releaseResult, err := tx.ExecContext(ctx, releaseQuery, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: release books: %w", op, err)
	}
	released, err = releaseResult.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	deleteResult, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: delete user: %w", op, err)
	}
	deleted, err := deleteResult.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if deleted == 0 {
		err = fmt.Errorf("%s: %w", op, errs.ErrNotFound)
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}
	return released, nil
}
