package userlist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/libly/library-lending/internal/models"
)

// MockService реализует интерфейс userlist.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ListUsers(ctx context.Context) ([]models.UserListItem, error) {
	args := m.Called(ctx)
	var users []models.UserListItem
	if u := args.Get(0); u != nil {
		users = u.([]models.UserListItem)
	}
	return users, args.Error(1)
}

func TestUserListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный список",
			setupMock: func(m *MockService) {
				m.On("ListUsers", mock.Anything).Return([]models.UserListItem{
					{ID: 1, Username: "admin", IsAdmin: true, BorrowedCount: 0},
					{ID: 2, Username: "reader", IsAdmin: false, BorrowedCount: 2},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"borrowed_count":2`,
		},
		{
			name: "ошибка сервиса",
			setupMock: func(m *MockService) {
				m.On("ListUsers", mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to list users"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
