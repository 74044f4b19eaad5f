package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/models"
)

// ListBooks возвращает весь каталог, для выданных книг подтягивая имя
// читателя через LEFT JOIN. Имя читателя в books не хранится.
func (s *Storage) ListBooks(ctx context.Context) ([]models.BookListItem, error) {
	const op = "storage.ListBooks"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT b.id, b.title, b.author, b.cover_image_url, b.is_borrowed,
			      b.borrowed_by, b.borrowed_at, b.due_date, u.username
			  FROM books b
			  LEFT JOIN users u ON b.borrowed_by = u.id
			  ORDER BY lower(b.title)`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.BookListItem
	for rows.Next() {
		var item models.BookListItem
		var author, coverURL, borrowerName sql.NullString
		var borrowedBy sql.NullInt64
		var borrowedAt, dueDate sql.NullTime
		if err := rows.Scan(&item.ID, &item.Title, &author, &coverURL, &item.IsBorrowed,
			&borrowedBy, &borrowedAt, &dueDate, &borrowerName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Author = nullString(author)
		item.CoverImageURL = nullString(coverURL)
		item.BorrowerUsername = nullString(borrowerName)
		if borrowedBy.Valid {
			item.BorrowedBy = &borrowedBy.Int64
		}
		item.BorrowedAt = nullTime(borrowedAt)
		item.DueDate = nullTime(dueDate)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetBookLendingState возвращает состояние выдачи одной книги.
// Используется для диагностики после неуспешного условного UPDATE и
// для проверки права на оплату штрафа.
func (s *Storage) GetBookLendingState(ctx context.Context, bookID int64) (*models.Book, error) {
	const op = "storage.GetBookLendingState"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, is_borrowed, borrowed_by, borrowed_at, due_date
			  FROM books
			  WHERE id = $1`
	var book models.Book
	var borrowedBy sql.NullInt64
	var borrowedAt, dueDate sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, bookID).Scan(
		&book.ID, &book.Title, &book.IsBorrowed, &borrowedBy, &borrowedAt, &dueDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, errs.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if borrowedBy.Valid {
		book.BorrowedBy = &borrowedBy.Int64
	}
	book.BorrowedAt = nullTime(borrowedAt)
	book.DueDate = nullTime(dueDate)
	return &book, nil
}

// BorrowBook атомарно переводит свободную книгу в состояние "выдана".
//
// Условие is_borrowed = FALSE проверяется тем же UPDATE, которым
// пишется новое состояние: из двух конкурентных заемщиков выиграет
// ровно один, второй получит ноль затронутых строк.
func (s *Storage) BorrowBook(ctx context.Context, bookID, userID int64, borrowedAt, dueDate time.Time) (int64, error) {
	const op = "storage.BorrowBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE books
			  SET is_borrowed = TRUE, borrowed_by = $1, borrowed_at = $2, due_date = $3
			  WHERE id = $4 AND is_borrowed = FALSE`
	result, err := s.DB.ExecContext(ctx, query, userID, borrowedAt, dueDate, bookID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ReturnBook атомарно возвращает книгу: состояние и личность читателя
// проверяются одним UPDATE, вернуть чужую книгу нельзя.
func (s *Storage) ReturnBook(ctx context.Context, bookID, userID int64) (int64, error) {
	const op = "storage.ReturnBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE books
			  SET is_borrowed = FALSE, borrowed_by = NULL, borrowed_at = NULL, due_date = NULL
			  WHERE id = $1 AND borrowed_by = $2`
	result, err := s.DB.ExecContext(ctx, query, bookID, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// ListBorrowedByUser возвращает книги на руках у пользователя,
// ближайший срок возврата первым.
func (s *Storage) ListBorrowedByUser(ctx context.Context, userID int64) ([]models.Book, error) {
	const op = "storage.ListBorrowedByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, author, cover_image_url, borrowed_at, due_date
			  FROM books
			  WHERE borrowed_by = $1
			  ORDER BY due_date ASC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Book
	for rows.Next() {
		var book models.Book
		var author, coverURL sql.NullString
		var borrowedAt, dueDate sql.NullTime
		if err := rows.Scan(&book.ID, &book.Title, &author, &coverURL, &borrowedAt, &dueDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		book.IsBorrowed = true
		book.BorrowedBy = &userID
		book.Author = nullString(author)
		book.CoverImageURL = nullString(coverURL)
		book.BorrowedAt = nullTime(borrowedAt)
		book.DueDate = nullTime(dueDate)
		result = append(result, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateBook добавляет книгу в каталог и возвращает ее ID.
func (s *Storage) CreateBook(ctx context.Context, title string, author, coverImageURL *string) (int64, error) {
	const op = "storage.CreateBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO books (title, author, cover_image_url)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int64
	if err := s.DB.QueryRowContext(ctx, query, title, author, coverImageURL).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpdateBook обновляет только переданные поля метаданных книги.
// SET-часть собирается динамически из ненулевых полей запроса.
func (s *Storage) UpdateBook(ctx context.Context, bookID int64, req models.UpdateBookRequest) (int64, error) {
	const op = "storage.UpdateBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var setClauses []string
	var args []any
	addClause := func(column string, value any) {
		args = append(args, value)
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if req.Title != nil {
		addClause("title", *req.Title)
	}
	if req.Author != nil {
		addClause("author", emptyToNull(*req.Author))
	}
	if req.CoverImageURL != nil {
		addClause("cover_image_url", emptyToNull(*req.CoverImageURL))
	}
	if len(setClauses) == 0 {
		return 0, fmt.Errorf("%s: %w", op, errs.ErrInvalidArgument)
	}

	args = append(args, bookID)
	query := fmt.Sprintf("UPDATE books SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args))

	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// DeleteBook удаляет книгу по ID и возвращает число удаленных строк.
func (s *Storage) DeleteBook(ctx context.Context, bookID int64) (int64, error) {
	const op = "storage.DeleteBook"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM books WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, bookID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

func nullString(v sql.NullString) *string {
	if v.Valid {
		return &v.String
	}
	return nil
}

func nullTime(v sql.NullTime) *time.Time {
	if v.Valid {
		t := v.Time.UTC()
		return &t
	}
	return nil
}

func emptyToNull(v string) any {
	if v == "" {
		return nil
	}
	return v
}
