// Package borrow реализует HTTP-обработчик выдачи книги текущему
// пользователю.
package borrow

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/libly/library-lending/internal/http/middlewarectx"
	"github.com/libly/library-lending/internal/http/response"
	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/lib/sl"
	"github.com/libly/library-lending/internal/models"
)

// Handler управляет HTTP-запросами выдачи книг.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс машины состояний выдачи.
type Service interface {
	Borrow(ctx context.Context, bookID, userID int64, durationDays int) (time.Time, error)
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
// @Summary Взять книгу
// @Description Выдает свободную книгу текущему пользователю на 1–7 дней.
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.BorrowRequest true "Книга и срок в днях"
// @Success 200 {object} response.Response "Срок возврата"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 409 {object} response.ErrorResponse "Книга уже выдана"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /books/borrow [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.borrow"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.BorrowRequest
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

	dueDate, err := h.service.Borrow(r.Context(), req.BookID, userID, req.Duration)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidArgument):
			log.Info("invalid borrow duration", slog.Int("duration", req.Duration))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("duration must be between 1 and 7 days"))
		case errors.Is(err, errs.ErrNotFound):
			log.Info("book not found", slog.Int64("book_id", req.BookID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
		case errors.Is(err, errs.ErrConflict):
			log.Info("book already borrowed", slog.Int64("book_id", req.BookID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("book is already borrowed"))
		default:
			log.Error("failed to borrow book", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to borrow book"))
		}
		return
	}

	log.Info("book borrowed", slog.Int64("book_id", req.BookID), slog.Time("due_date", dueDate))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"due_date": dueDate.UTC().Format(time.RFC3339),
	}))
}
