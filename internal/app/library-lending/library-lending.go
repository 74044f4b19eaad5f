// Package librarylending собирает и запускает основное приложение
// библиотеки: хранилище, миграции, сервисы и HTTP-сервер.
package librarylending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/libly/library-lending/internal/config"
	"github.com/libly/library-lending/internal/lib/jwt"
	"github.com/libly/library-lending/internal/lib/password"
	"github.com/libly/library-lending/internal/migrations"
	adminservice "github.com/libly/library-lending/internal/services/admin"
	authservice "github.com/libly/library-lending/internal/services/auth"
	catalogservice "github.com/libly/library-lending/internal/services/catalog"
	lendingservice "github.com/libly/library-lending/internal/services/lending"
	"github.com/libly/library-lending/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}
	if err = seedAdmin(ctx, db, cfg); err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := authservice.New(db, jwtMaker)
	lendingService := lendingservice.New(db, logger)
	catalogService := catalogservice.New(db, logger)
	adminService := adminservice.New(db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, authService, lendingService, catalogService, adminService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// seedAdmin создает учетную запись администратора при первом запуске.
// Если имя уже занято, вставка молча пропускается.
func seedAdmin(ctx context.Context, db *repository.Storage, cfg *config.Config) error {
	const op = "app.seedAdmin"

	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return fmt.Errorf("%s: admin credentials are not configured", op)
	}
	hash, err := password.GetHash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := db.EnsureUser(ctx, cfg.AdminUsername, hash, true); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		return err
	}
}
