// Package auth содержит бизнес-логику регистрации, входа и проверки
// JWT токенов.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/libly/library-lending/internal/lib/errs"
	"github.com/libly/library-lending/internal/lib/jwt"
	"github.com/libly/library-lending/internal/lib/password"
	"github.com/libly/library-lending/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, username, passwordHash string, isAdmin bool) (int64, error)
	// GetUserByUsername возвращает пользователя по имени либо
	// errs.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service отвечает за регистрацию, вход и валидацию JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает пользователя с bcrypt-хэшем пароля и обычной ролью.
// Администраторы через регистрацию не создаются.
func (s *Service) Register(ctx context.Context, username, rawPassword string) (int64, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return 0, err
	}
	return s.users.RegisterUser(ctx, username, hashed, false)
}

// Login проверяет пароль и выпускает JWT.
//
// Несуществующий пользователь и неверный пароль снаружи неразличимы:
// оба случая возвращают errs.ErrForbidden с одним и тем же текстом.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token string, user *models.User, err error) {
	user, err = s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", nil, fmt.Errorf("invalid credentials: %w", errs.ErrForbidden)
		}
		return "", nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", errs.ErrForbidden)
	}
	token, err = s.jwtMaker.GenerateToken(user.ID, user.Username, user.Role())
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает извлеченные claims.
func (s *Service) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}
