package librarylending

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/libly/library-lending/internal/http/handlers/admin/userlist"
	"github.com/libly/library-lending/internal/http/handlers/admin/userremove"
	"github.com/libly/library-lending/internal/http/handlers/auth/login"
	"github.com/libly/library-lending/internal/http/handlers/auth/register"
	"github.com/libly/library-lending/internal/http/handlers/book/add"
	"github.com/libly/library-lending/internal/http/handlers/book/borrow"
	"github.com/libly/library-lending/internal/http/handlers/book/list"
	"github.com/libly/library-lending/internal/http/handlers/book/remove"
	"github.com/libly/library-lending/internal/http/handlers/book/returnbook"
	"github.com/libly/library-lending/internal/http/handlers/book/update"
	"github.com/libly/library-lending/internal/http/handlers/user/borrowed"
	"github.com/libly/library-lending/internal/http/handlers/user/payfine"
	"github.com/libly/library-lending/internal/http/middlewarectx"
	adminservice "github.com/libly/library-lending/internal/services/admin"
	authservice "github.com/libly/library-lending/internal/services/auth"
	catalogservice "github.com/libly/library-lending/internal/services/catalog"
	lendingservice "github.com/libly/library-lending/internal/services/lending"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	tokenParser middlewarectx.TokenParser,
	authService *authservice.Service,
	lendingService *lendingservice.Service,
	catalogService *catalogservice.Service,
	adminService *adminservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokenParser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/books", list.New(logger, lendingService).ServeHTTP)
			r.Post("/books/borrow", borrow.New(logger, lendingService).ServeHTTP)
			r.Post("/books/return", returnbook.New(logger, lendingService).ServeHTTP)
			r.Get("/users/me/borrowed", borrowed.New(logger, lendingService).ServeHTTP)
			r.Post("/users/me/pay/{bookID}", payfine.New(logger, lendingService).ServeHTTP)

			// Группа администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/books", add.New(logger, catalogService).ServeHTTP)
				r.Patch("/books/{id}", update.New(logger, catalogService).ServeHTTP)
				r.Delete("/books/{id}", remove.New(logger, catalogService).ServeHTTP)
				r.Get("/admin/users", userlist.New(logger, adminService).ServeHTTP)
				r.Delete("/admin/users/{id}", userremove.New(logger, adminService).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
