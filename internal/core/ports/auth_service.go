package ports

import (
	"context"
	"time"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

// AuthResult is returned by every successful authentication or registration.
type AuthResult struct {
	Token   string
	Session domain.SessionToken
	User    domain.UserView
}

type AuthService interface {
	Authenticate(ctx context.Context, email, secret string, role domain.Role) (*AuthResult, error)
	Login(ctx context.Context, email, secret string) (*AuthResult, error)
	Register(ctx context.Context, email, secret, name string) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID, newSecret string) error
}

// TokenCodec issues and decodes signed session tokens.
type TokenCodec interface {
	Issue(userID string, now time.Time) (string, domain.SessionToken, error)
	// Decode returns domain.ErrInvalidToken or domain.ErrExpiredToken.
	Decode(token string) (domain.SessionToken, error)
}
