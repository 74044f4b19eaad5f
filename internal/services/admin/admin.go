// Package admin содержит бизнес-логику административного управления
// пользователями.
package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/models"
)

// UserRepository определяет методы хранилища для управления
// пользователями.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.UserListItem, error)
	// DeleteUserWithBooks одной транзакцией освобождает книги
	// пользователя и удаляет его; возвращает число освобожденных книг
	// либо errs.ErrNotFound.
	DeleteUserWithBooks(ctx context.Context, userID int64) (int64, error)
}

// Service реализует админские операции над пользователями.
type Service struct {
	repo UserRepository
	log  *slog.Logger
}

// New создает новый Service.
func New(repo UserRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// ListUsers возвращает всех пользователей с числом книг на руках.
func (s *Service) ListUsers(ctx context.Context) ([]models.UserListItem, error) {
	return s.repo.ListUsers(ctx)
}

// DeleteUser удаляет пользователя и возвращает число освобожденных
// книг.
//
// Удаление собственной учетной записи отклоняется до любых изменений
// в базе. Остальное выполняет транзакция хранилища: освобождение книг
// и удаление строки либо применяются вместе, либо не применяются
// вовсе.
func (s *Service) DeleteUser(ctx context.Context, targetUserID, actingAdminID int64) (int64, error) {
	const op = "admin.DeleteUser"

	if targetUserID == actingAdminID {
		return 0, fmt.Errorf("%s: administrators cannot delete their own account: %w",
			op, errs.ErrForbidden)
	}

	released, err := s.repo.DeleteUserWithBooks(ctx, targetUserID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user deleted",
		slog.Int64("user_id", targetUserID),
		slog.Int64("acting_admin_id", actingAdminID),
		slog.Int64("released_books", released))
	return released, nil
}
