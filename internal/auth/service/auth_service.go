package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/corveoperu/cuervo-blanco-web/internal/auth/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/auth/repository"
	"github.com/corveoperu/cuervo-blanco-web/internal/auth/session"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidRole        = errors.New("unknown role")
)

const minPasswordLength = 8

type AuthService struct {
	users    repository.UserRepository
	sessions session.Store
	logger   *zap.Logger
}

func NewAuthService(users repository.UserRepository, sessions session.Store, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, logger: logger}
}

// Register creates a customer account and logs it in.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*domain.User, *session.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, sess, nil
}

// Login verifies the credentials and issues a fresh session token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, *session.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Role)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return user, sess, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// Resolve maps a session token back to its user.
func (s *AuthService) Resolve(ctx context.Context, token string) (*session.Session, error) {
	return s.sessions.Get(ctx, token)
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	if !domain.ValidRole(role) {
		return ErrInvalidRole
	}
	if err := s.users.UpdateRole(ctx, id, role); err != nil {
		return err
	}
	s.logger.Info("user role updated",
		zap.String("user_id", id.String()), zap.String("role", string(role)))
	return nil
}
