// Package models содержит структуры данных приложения: пользователей,
// книги и DTO входящих запросов с тегами валидации.
package models

import "time"

// User описывает учетную запись пользователя библиотеки.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // Хэш пароля, наружу не отдается
	IsAdmin      bool   `json:"is_admin"`
}

// Role возвращает строковую роль пользователя для JWT-claims.
func (u *User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

// Book описывает строку таблицы books.
//
// Инвариант: BorrowedBy, BorrowedAt и DueDate либо заполнены все
// одновременно (IsBorrowed = true), либо все отсутствуют
// (IsBorrowed = false). Частичное состояние в базу не попадает.
type Book struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Author        *string    `json:"author,omitempty"`
	CoverImageURL *string    `json:"cover_image_url,omitempty"`
	IsBorrowed    bool       `json:"is_borrowed"`
	BorrowedBy    *int64     `json:"borrowed_by,omitempty"`
	BorrowedAt    *time.Time `json:"borrowed_at,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
}

// BookListItem — строка каталога, обогащенная именем читателя
// (LEFT JOIN с users на стороне чтения, в базе имя не хранится).
type BookListItem struct {
	Book
	BorrowerUsername *string `json:"borrower_username,omitempty"`
}

// BorrowedBook — книга на руках у пользователя вместе с рассчитанным
// на момент запроса статусом просрочки и штрафом.
type BorrowedBook struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Author        *string   `json:"author,omitempty"`
	CoverImageURL *string   `json:"cover_image_url,omitempty"`
	BorrowedAt    time.Time `json:"borrowed_at"`
	DueDate       time.Time `json:"due_date"`
	IsOverdue     bool      `json:"is_overdue"`
	BaseCost      float64   `json:"base_cost"`
	Fine          float64   `json:"fine"`
	DaysOverdue   int       `json:"days_overdue"`
}

// UserListItem — пользователь в админском списке вместе с числом книг
// на руках.
type UserListItem struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	IsAdmin       bool   `json:"is_admin"`
	BorrowedCount int    `json:"borrowed_count"`
}

// RegisterRequest — тело запроса регистрации нового пользователя.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest — тело запроса входа.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// BorrowRequest — тело запроса выдачи книги. Duration задается в днях.
type BorrowRequest struct {
	BookID   int64 `json:"book_id" validate:"required,min=1"`
	Duration int   `json:"duration" validate:"required,min=1,max=7"`
}

// ReturnRequest — тело запроса возврата книги.
type ReturnRequest struct {
	BookID int64 `json:"book_id" validate:"required,min=1"`
}

// AddBookRequest — тело запроса добавления книги в каталог.
type AddBookRequest struct {
	Title         string `json:"title" validate:"required"`
	Author        string `json:"author"`
	CoverImageURL string `json:"cover_image_url"`
}

// UpdateBookRequest — частичное обновление метаданных книги.
// nil-поле означает "не менять", пустая строка — "очистить"
// (для title пустое значение запрещено).
type UpdateBookRequest struct {
	Title         *string `json:"title"`
	Author        *string `json:"author"`
	CoverImageURL *string `json:"cover_image_url"`
}
