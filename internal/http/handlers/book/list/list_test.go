package list

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

// MockService реализует интерфейс list.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context) ([]models.BookListItem, error) {
	args := m.Called(ctx)
	var books []models.BookListItem
	if b := args.Get(0); b != nil {
		books = b.([]models.BookListItem)
	}
	return books, args.Error(1)
}

func TestListHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	borrower := "reader"
	tests := []struct {
		name           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешный список",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything).Return([]models.BookListItem{
					{
						Book:             models.Book{ID: 1, Title: "Dune", IsBorrowed: true},
						BorrowerUsername: &borrower,
					},
					{
						Book: models.Book{ID: 2, Title: "Neuromancer"},
					},
				}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"title":"Dune"`,
		},
		{
			name: "пустой каталог",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything).Return([]models.BookListItem{}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name: "ошибка сервиса",
			setupMock: func(m *MockService) {
				m.On("List", mock.Anything).Return(nil, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to list books"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, "/books", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
