// Package remove реализует HTTP-обработчик удаления книги из каталога.
package remove

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/libly/library-lending/internal/http/response"
	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/lib/sl"
)

// Handler управляет HTTP-запросами удаления книг.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс управления каталогом.
type Service interface {
	Remove(ctx context.Context, bookID int64) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить книгу
// @Description Удаляет книгу из каталога. Доступно только администратору.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID книги"
// @Success 200 {object} response.Response "Книга удалена"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /books/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.remove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	bookID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || bookID < 1 {
		log.Error("invalid book id in path", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid book id"))
		return
	}

	if err := h.service.Remove(r.Context(), bookID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Info("book not found", slog.Int64("book_id", bookID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
			return
		}
		log.Error("failed to remove book", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove book"))
		return
	}

	log.Info("book removed", slog.Int64("book_id", bookID))
	render.JSON(w, r, response.OK())
}
