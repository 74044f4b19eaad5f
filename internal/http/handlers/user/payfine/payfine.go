// Package payfine реализует HTTP-обработчик имитации оплаты штрафа.
package payfine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/libly/library-lending/internal/http/middlewarectx"
	"github.com/libly/library-lending/internal/http/response"
	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/lib/sl"
)

// Handler управляет HTTP-запросами оплаты штрафов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс машины состояний выдачи.
type Service interface {
	SimulatePayment(ctx context.Context, bookID, userID int64) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Оплатить штраф
// @Description Имитирует оплату штрафа за просроченную книгу. Оплата нигде не сохраняется, состояние книги не меняется.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param bookID path int true "ID книги"
// @Success 200 {object} response.Response "Оплата принята"
// @Failure 400 {object} response.ErrorResponse "Книга не просрочена"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Книга выдана другому"
// @Failure 404 {object} response.ErrorResponse "Книга не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/me/pay/{bookID} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.payfine"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	bookID, err := strconv.ParseInt(chi.URLParam(r, "bookID"), 10, 64)
	if err != nil || bookID < 1 {
		log.Error("invalid book id in path", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid book id"))
		return
	}

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.SimulatePayment(r.Context(), bookID, userID); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			log.Info("book not found", slog.Int64("book_id", bookID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("book not found"))
		case errors.Is(err, errs.ErrInvalidState):
			log.Info("nothing to pay for", slog.Int64("book_id", bookID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("book has no outstanding fine"))
		case errors.Is(err, errs.ErrForbidden):
			log.Info("book borrowed by another user", slog.Int64("book_id", bookID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("you cannot pay a fine for a book you haven't borrowed"))
		default:
			log.Error("failed to process payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to process payment"))
		}
		return
	}

	log.Info("fine paid", slog.Int64("book_id", bookID))
	render.JSON(w, r, response.OKWithData(map[string]any{"message": "fine paid"}))
}
