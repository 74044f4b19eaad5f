// Package borrowed реализует HTTP-обработчик списка книг текущего пользователя.
package borrowed

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/libly/library-lending/internal/http/middlewarectx"
	"github.com/libly/library-lending/internal/http/response"
	"github.com/libly/library-lending/internal/lib/sl"
	"github.com/libly/library-lending/internal/models"
)

// Handler управляет HTTP-запросами списка выданных книг.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс машины состояний выдачи.
type Service interface {
	ListBorrowedBy(ctx context.Context, userID int64) ([]models.BorrowedBook, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Мои книги
// @Description Возвращает книги, выданные текущему пользователю, с рассчитанной стоимостью и штрафами.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]models.BorrowedBook} "Список книг"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/me/borrowed [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.borrowed"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	books, err := h.service.ListBorrowedBy(r.Context(), userID)
	if err != nil {
		log.Error("failed to list borrowed books", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list borrowed books"))
		return
	}

	log.Info("borrowed books listed", slog.Int("count", len(books)))
	render.JSON(w, r, response.OKWithData(books))
}
