// Package list реализует HTTP-обработчик выдачи каталога книг.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/libly/library-lending/internal/http/response"
	"github.com/libly/library-lending/internal/lib/sl"
	"github.com/libly/library-lending/internal/models"
)

// Handler управляет HTTP-запросами списка книг.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	List(ctx context.Context) ([]models.BookListItem, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список книг
// @Description Возвращает каталог; для выданных книг — имя читателя.
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Каталог"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /books [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.book.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	books, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list books", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list books"))
		return
	}

	log.Info("books listed", slog.Int("count", len(books)))
	render.JSON(w, r, response.OKWithData(books))
}
