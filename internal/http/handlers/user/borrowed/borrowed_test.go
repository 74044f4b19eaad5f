package borrowed

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

	"github.com/libly/library-lending/internal/http/middlewarectx"
	"github.com/libly/library-lending/internal/models"
)

// MockService реализует интерфейс borrowed.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ListBorrowedBy(ctx context.Context, userID int64) ([]models.BorrowedBook, error) {
	args := m.Called(ctx, userID)
	var books []models.BorrowedBook
	if b := args.Get(0); b != nil {
		books = b.([]models.BorrowedBook)
	}
	return books, args.Error(1)
}

func TestBorrowedHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		userID         int64
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешный список с просрочкой",
			userID:   42,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("ListBorrowedBy", mock.Anything, int64(42)).Return([]models.BorrowedBook{
					{
						ID:          1,
						Title:       "Dune",
						IsOverdue:   true,
						BaseCost:    3,
						Fine:        23,
						DaysOverdue: 2,
					},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"fine":23`,
		},
		{
			name:     "нет книг на руках",
			userID:   42,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("ListBorrowedBy", mock.Anything, int64(42)).Return([]models.BorrowedBook{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "нет пользователя в контексте",
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:     "ошибка сервиса",
			userID:   42,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("ListBorrowedBy", mock.Anything, int64(42)).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to list borrowed books"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/users/me/borrowed", nil)
			if tt.withUser {
				ctx := context.WithValue(req.Context(), middlewarectx.UserID, tt.userID)
				req = req.WithContext(ctx)
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
