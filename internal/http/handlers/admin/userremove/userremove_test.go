package userremove

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/libly/library-lending/internal/http/middlewarectx"
	"github.com/libly/library-lending/internal/lib/errs"
)

// MockService реализует интерфейс userremove.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) DeleteUser(ctx context.Context, targetUserID, actingAdminID int64) (int64, error) {
	args := m.Called(ctx, targetUserID, actingAdminID)
	return args.Get(0).(int64), args.Error(1)
}

func TestUserRemoveHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		idParam        string
		adminID        int64
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:    "успешное удаление с освобождением книг",
			idParam: "5",
			adminID: 1,
			setupMock: func(m *MockService) {
				m.On("DeleteUser", mock.Anything, int64(5), int64(1)).Return(int64(2), nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"released_books":2`,
		},
		{
			name:           "некорректный id",
			idParam:        "abc",
			adminID:        1,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid user id"`,
		},
		{
			name:    "попытка удалить себя",
			idParam: "1",
			adminID: 1,
			setupMock: func(m *MockService) {
				m.On("DeleteUser", mock.Anything, int64(1), int64(1)).
					Return(int64(0), fmt.Errorf("self-deletion: %w", errs.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"administrators cannot delete their own account"`,
		},
		{
			name:    "пользователь не найден",
			idParam: "99",
			adminID: 1,
			setupMock: func(m *MockService) {
				m.On("DeleteUser", mock.Anything, int64(99), int64(1)).
					Return(int64(0), fmt.Errorf("not found: %w", errs.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"user not found"`,
		},
		{
			name:    "ошибка сервиса",
			idParam: "5",
			adminID: 1,
			setupMock: func(m *MockService) {
				m.On("DeleteUser", mock.Anything, int64(5), int64(1)).
					Return(int64(0), errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to delete user"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodDelete, "/admin/users/"+tt.idParam, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.idParam)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middlewarectx.UserID, tt.adminID)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
