// Package catalog содержит бизнес-логику административного управления
// каталогом книг: добавление, правку метаданных и удаление.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/models"
)

// BookRepository определяет методы хранилища для CRUD каталога.
type BookRepository interface {
	CreateBook(ctx context.Context, title string, author, coverImageURL *string) (int64, error)
	UpdateBook(ctx context.Context, bookID int64, req models.UpdateBookRequest) (int64, error)
	DeleteBook(ctx context.Context, bookID int64) (int64, error)
}

// Service реализует операции над метаданными книг. Состояние выдачи
// эти операции не трогают.
type Service struct {
	repo BookRepository
	log  *slog.Logger
}

// New создает новый Service.
func New(repo BookRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Add добавляет книгу. Title обязателен и после обрезки пробелов не
// может быть пустым, author и cover необязательны.
func (s *Service) Add(ctx context.Context, req models.AddBookRequest) (int64, error) {
	const op = "catalog.Add"

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return 0, fmt.Errorf("%s: title must not be empty: %w", op, errs.ErrInvalidArgument)
	}

	id, err := s.repo.CreateBook(ctx, title,
		trimToNil(req.Author), trimToNil(req.CoverImageURL))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("book added", slog.Int64("book_id", id), slog.String("title", title))
	return id, nil
}

// Update меняет только переданные поля. Попытка очистить title
// отклоняется, отсутствующая книга — errs.ErrNotFound.
func (s *Service) Update(ctx context.Context, bookID int64, req models.UpdateBookRequest) error {
	const op = "catalog.Update"

	if req.Title == nil && req.Author == nil && req.CoverImageURL == nil {
		return fmt.Errorf("%s: no fields to update: %w", op, errs.ErrInvalidArgument)
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			return fmt.Errorf("%s: title must not be empty: %w", op, errs.ErrInvalidArgument)
		}
		req.Title = &trimmed
	}

	rowsAffected, err := s.repo.UpdateBook(ctx, bookID, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	s.log.Info("book updated", slog.Int64("book_id", bookID))
	return nil
}

// Remove удаляет книгу из каталога.
func (s *Service) Remove(ctx context.Context, bookID int64) error {
	const op = "catalog.Remove"

	rowsAffected, err := s.repo.DeleteBook(ctx, bookID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}

	s.log.Info("book deleted", slog.Int64("book_id", bookID))
	return nil
}

func trimToNil(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
