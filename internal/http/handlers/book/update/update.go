// Package update реализует HTTP-обработчик изменения книги.
package update

import (
	"context"
	"encoding/json"
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
	"github.com/libly/library-lending/internal/models"
)

// Handler управляет HTTP-запросами изменения книг.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс управления каталогом.
type Service interface {
	Update(ctx context.Context, bookID int64, req models.UpdateBookRequest) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Изменить книгу
// @Description Обновляет метаданные книги. Переданные поля заменяются, отсутствующие не меняются. Доступно только администратору.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID книги"
// @Param request body models.UpdateBookRequest true "Изменяемые поля"
// @Success 200 {object} response.Response "Книга обновлена"
// @Failure 400 {object} response.ErrorResponse "Некорректные данные"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /books/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.update"
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

	var req models.UpdateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), bookID, req); err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidArgument):
			log.Info("invalid update data", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("no valid fields to update"))
		case errors.Is(err, errs.ErrNotFound):
			log.Info("book not found", slog.Int64("book_id", bookID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
		default:
			log.Error("failed to update book", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to update book"))
		}
		return
	}

	log.Info("book updated", slog.Int64("book_id", bookID))
	render.JSON(w, r, response.OK())
}
