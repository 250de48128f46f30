package session

import (
	"context"
	"errors"
	"time"

	"github.com/corveoperu/cuervo-blanco-web/internal/auth/domain"
	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Session is what an opaque token resolves to.
type Session struct {
	Token     string      `json:"-"`
	UserID    uuid.UUID   `json:"user_id"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// Store issues and resolves opaque session tokens. Tokens expire server-side
// after the configured TTL; nothing about the user is encoded in the token
// itself.
type Store interface {
	Create(ctx context.Context, userID uuid.UUID, role domain.Role) (*Session, error)
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
