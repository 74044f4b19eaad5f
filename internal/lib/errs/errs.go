// Package errs определяет общие категории ошибок сервиса.
//
// Сервисный и хранилищный слои возвращают эти значения (обычно
// обернутые через fmt.Errorf с %w), а HTTP-слой отображает их в
// статусы через errors.Is, не разбирая текст сообщений.
package errs

import "errors"

var (
	// ErrInvalidArgument — некорректный или выходящий за допустимый
	// диапазон входной параметр.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound — запрошенная книга или пользователь не существует.
	ErrNotFound = errors.New("not found")
	// ErrConflict — проигрыш гонки за состояние, например книга уже
	// выдана другому читателю.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState — операция недопустима в текущем состоянии:
	// возврат свободной книги, оплата непросроченной книги.
	ErrInvalidState = errors.New("invalid state")
	// ErrForbidden — нарушение прав: возврат чужой книги, удаление
	// собственной учетной записи администратором.
	ErrForbidden = errors.New("forbidden")
)
