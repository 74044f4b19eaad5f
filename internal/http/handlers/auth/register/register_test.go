package register

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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/libly/library-lending/internal/lib/errs"
)

// MockService реализует интерфейс register.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, username, password string) (int64, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(int64), args.Error(1)
}

func TestRegisterHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешная регистрация",
			body: `{"username": "reader", "password": "secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "reader", "secret123").Return(int64(5), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"user_id":5`,
		},
		{
			name:           "некорректный json",
			body:           `{invalid`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "короткое имя",
			body:           `{"username": "ab", "password": "secret123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Username is below the minimum value`,
		},
		{
			name:           "короткий пароль",
			body:           `{"username": "reader", "password": "123"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Password is below the minimum value`,
		},
		{
			name: "имя занято",
			body: `{"username": "reader", "password": "secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "reader", "secret123").
					Return(int64(0), fmt.Errorf("taken: %w", errs.ErrConflict))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"username already taken"`,
		},
		{
			name: "ошибка сервиса",
			body: `{"username": "reader", "password": "secret123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "reader", "secret123").
					Return(int64(0), errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to register user"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
