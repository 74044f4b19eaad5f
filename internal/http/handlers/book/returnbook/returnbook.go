// Package returnbook реализует HTTP-обработчик возврата книги.
package returnbook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/libly/library-lending/internal/http/middlewarectx"
	"github.com/libly/library-lending/internal/http/response"
	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/lib/sl"
	"github.com/libly/library-lending/internal/models"
)

// Handler управляет HTTP-запросами возврата книг.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс машины состояний выдачи.
type Service interface {
	Return(ctx context.Context, bookID, userID int64) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вернуть книгу
// @Description Возвращает книгу, выданную текущему пользователю.
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ReturnRequest true "Книга"
// @Success 200 {object} response.Response "Книга возвращена"
// @Failure 400 {object} response.ErrorResponse "Книга не выдана"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Книга выдана другому"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /books/return [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.returnbook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.ReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Return(r.Context(), req.BookID, userID); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			log.Info("book not found", slog.Int64("book_id", req.BookID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
		case errors.Is(err, errs.ErrInvalidState):
			log.Info("book is not borrowed", slog.Int64("book_id", req.BookID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("book is not currently borrowed"))
		case errors.Is(err, errs.ErrForbidden):
			log.Info("book borrowed by another user", slog.Int64("book_id", req.BookID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("you cannot return a book you haven't borrowed"))
		default:
			log.Error("failed to return book", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to return book"))
		}
		return
	}

	log.Info("book returned", slog.Int64("book_id", req.BookID))
	render.JSON(w, r, response.OK())
}
