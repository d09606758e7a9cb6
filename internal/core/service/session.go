package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

// SessionVerifier resolves a presented token to the user it was issued for.
type SessionVerifier struct {
	tokens ports.TokenCodec
	users  ports.CredentialStore
}

func NewSessionVerifier(tokens ports.TokenCodec, users ports.CredentialStore) *SessionVerifier {
	return &SessionVerifier{tokens: tokens, users: users}
}

// Verify fails with domain.ErrInvalidToken, domain.ErrExpiredToken or
// domain.ErrUnknownSubject. It has no side effects.
func (v *SessionVerifier) Verify(ctx context.Context, token string) (*domain.User, error) {
	session, err := v.tokens.Decode(token)
	if err != nil {
		return nil, err
	}

	user, err := v.users.FindByID(ctx, session.SubjectUserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnknownSubject
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationUnavailable, err)
	}
	return user, nil
}
