// Package lending реализует машину состояний выдачи книг: выдачу,
// возврат, список книг на руках с расчетом штрафа и симуляцию оплаты.
package lending

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/lib/fine"
	"github.com/libly/library-lending/internal/models"
)

const (
	// MinBorrowDays и MaxBorrowDays ограничивают срок выдачи в днях.
	MinBorrowDays = 1
	MaxBorrowDays = 7
)

// BookRepository определяет методы хранилища, нужные машине выдачи.
type BookRepository interface {
	// ListBooks возвращает каталог с именем читателя для выданных книг.
	ListBooks(ctx context.Context) ([]models.BookListItem, error)
	// BorrowBook выполняет условный UPDATE "выдать, если свободна"
	// и возвращает число затронутых строк.
	BorrowBook(ctx context.Context, bookID, userID int64, borrowedAt, dueDate time.Time) (int64, error)
	// ReturnBook выполняет условный UPDATE "вернуть, если выдана
	// этому пользователю" и возвращает число затронутых строк.
	ReturnBook(ctx context.Context, bookID, userID int64) (int64, error)
	// GetBookLendingState возвращает состояние выдачи книги либо
	// errs.ErrNotFound.
	GetBookLendingState(ctx context.Context, bookID int64) (*models.Book, error)
	// ListBorrowedByUser возвращает книги на руках у пользователя.
	ListBorrowedByUser(ctx context.Context, userID int64) ([]models.Book, error)
}

// Service реализует операции над состоянием выдачи. Состояние книг
// между запросами в памяти не хранится: каждый переход заново
// проверяется хранилищем в момент записи.
type Service struct {
	repo BookRepository
	log  *slog.Logger
	now  func() time.Time
}

// New создает новый Service с часами time.Now.
func New(repo BookRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// List возвращает каталог книг.
func (s *Service) List(ctx context.Context) ([]models.BookListItem, error) {
	return s.repo.ListBooks(ctx)
}

// Borrow выдает книгу пользователю на durationDays дней и возвращает
// срок возврата.
//
// Переход выполняется одним условным UPDATE; при нуле затронутых
// строк состояние книги перечитывается, чтобы различить отсутствующую
// книгу (errs.ErrNotFound) и проигранную гонку (errs.ErrConflict).
func (s *Service) Borrow(ctx context.Context, bookID, userID int64, durationDays int) (time.Time, error) {
	const op = "lending.Borrow"

	if durationDays < MinBorrowDays || durationDays > MaxBorrowDays {
		return time.Time{}, fmt.Errorf("%s: duration must be between %d and %d days: %w",
			op, MinBorrowDays, MaxBorrowDays, errs.ErrInvalidArgument)
	}

	borrowedAt := s.now().UTC()
	dueDate := borrowedAt.AddDate(0, 0, durationDays)

	rowsAffected, err := s.repo.BorrowBook(ctx, bookID, userID, borrowedAt, dueDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		book, err := s.repo.GetBookLendingState(ctx, bookID)
		if err != nil {
			// GetBookLendingState уже возвращает errs.ErrNotFound,
			// если книги нет.
			return time.Time{}, fmt.Errorf("%s: %w", op, err)
		}
		if book.IsBorrowed {
			return time.Time{}, fmt.Errorf("%s: book is already borrowed: %w", op, errs.ErrConflict)
		}
		return time.Time{}, fmt.Errorf("%s: borrow failed for unknown reason, book %d", op, bookID)
	}

	s.log.Info("book borrowed",
		slog.Int64("book_id", bookID),
		slog.Int64("user_id", userID),
		slog.Time("due_date", dueDate))
	return dueDate, nil
}

// Return возвращает книгу. Личность читателя и состояние книги
// проверяются тем же UPDATE, что снимает выдачу; при нуле затронутых
// строк состояние перечитывается для диагностики: errs.ErrNotFound —
// книги нет, errs.ErrInvalidState — книга и так свободна,
// errs.ErrForbidden — выдана другому.
func (s *Service) Return(ctx context.Context, bookID, userID int64) error {
	const op = "lending.Return"

	rowsAffected, err := s.repo.ReturnBook(ctx, bookID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		book, err := s.repo.GetBookLendingState(ctx, bookID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !book.IsBorrowed {
			return fmt.Errorf("%s: book is not currently borrowed: %w", op, errs.ErrInvalidState)
		}
		return fmt.Errorf("%s: book is borrowed by another user: %w", op, errs.ErrForbidden)
	}

	s.log.Info("book returned",
		slog.Int64("book_id", bookID),
		slog.Int64("user_id", userID))
	return nil
}

// ListBorrowedBy возвращает книги на руках у пользователя, обогащая
// каждую расчетом просрочки и штрафа на текущий момент. Расчет чистый
// и ничего не записывает: статус меняется только с ходом времени.
func (s *Service) ListBorrowedBy(ctx context.Context, userID int64) ([]models.BorrowedBook, error) {
	const op = "lending.ListBorrowedBy"

	books, err := s.repo.ListBorrowedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now().UTC()
	result := make([]models.BorrowedBook, 0, len(books))
	for _, book := range books {
		if book.BorrowedAt == nil || book.DueDate == nil {
			// Нарушение инварианта хранилища: выданная книга без дат.
			s.log.Warn("borrowed book is missing dates",
				slog.Int64("book_id", book.ID),
				slog.Int64("user_id", userID))
			continue
		}
		status := fine.Compute(*book.BorrowedAt, *book.DueDate, now)
		if status.Warning {
			s.log.Warn("book has borrowed_at >= due_date",
				slog.Int64("book_id", book.ID),
				slog.Time("borrowed_at", *book.BorrowedAt),
				slog.Time("due_date", *book.DueDate))
		}
		result = append(result, models.BorrowedBook{
			ID:            book.ID,
			Title:         book.Title,
			Author:        book.Author,
			CoverImageURL: book.CoverImageURL,
			BorrowedAt:    *book.BorrowedAt,
			DueDate:       *book.DueDate,
			IsOverdue:     status.IsOverdue,
			BaseCost:      status.BaseCost,
			Fine:          status.Fine,
			DaysOverdue:   status.DaysOverdue,
		})
	}
	return result, nil
}

// SimulatePayment проверяет право пользователя "оплатить" штраф за
// книгу: книга должна существовать, быть выданной именно ему и быть
// просроченной на текущий момент.
//
// Никакой записи не происходит — оплата симулируется, сервер не
// хранит признак "штраф оплачен", и повторные вызовы для все еще
// просроченной книги так же успешны. Это осознанное упрощение:
// источником истины для возврата после оплаты служит клиент.
func (s *Service) SimulatePayment(ctx context.Context, bookID, userID int64) error {
	const op = "lending.SimulatePayment"

	book, err := s.repo.GetBookLendingState(ctx, bookID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if book.BorrowedBy == nil || book.DueDate == nil {
		return fmt.Errorf("%s: book is not currently borrowed: %w", op, errs.ErrInvalidState)
	}
	if *book.BorrowedBy != userID {
		return fmt.Errorf("%s: book is borrowed by another user: %w", op, errs.ErrForbidden)
	}
	if !s.now().UTC().After(*book.DueDate) {
		return fmt.Errorf("%s: book is not overdue: %w", op, errs.ErrInvalidState)
	}

	s.log.Info("fine payment simulated",
		slog.Int64("book_id", bookID),
		slog.Int64("user_id", userID))
	return nil
}
