// Package userremove реализует HTTP-обработчик удаления пользователя.
package userremove

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

// Handler управляет HTTP-запросами удаления пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс администрирования пользователей.
type Service interface {
	DeleteUser(ctx context.Context, targetUserID, actingAdminID int64) (int64, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить пользователя
// @Description Удаляет пользователя, освобождая все его книги одной транзакцией. Удаление собственной учетной записи запрещено. Доступно только администратору.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID пользователя"
// @Success 200 {object} response.Response "Пользователь удален"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Нет токена"
// @Failure 403 {object} response.ErrorResponse "Попытка удалить себя"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userremove"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || targetID < 1 {
		log.Error("invalid user id in path", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	adminID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	released, err := h.service.DeleteUser(r.Context(), targetID, adminID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrForbidden):
			log.Info("self-deletion rejected", slog.Int64("user_id", targetID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("administrators cannot delete their own account"))
		case errors.Is(err, errs.ErrNotFound):
			log.Info("user not found", slog.Int64("user_id", targetID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to delete user", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to delete user"))
		}
		return
	}

	log.Info("user deleted",
		slog.Int64("user_id", targetID),
		slog.Int64("released_books", released))
	render.JSON(w, r, response.OKWithData(map[string]any{"released_books": released}))
}
