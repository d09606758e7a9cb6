package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

// Verifier resolves a session token to its user.
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// Guard combines session verification and capability authorization in front
// of a protected operation.
type Guard struct {
	verifier Verifier
	logger   zerolog.Logger
}

func NewGuard(verifier Verifier, logger zerolog.Logger) *Guard {
	return &Guard{verifier: verifier, logger: logger}
}

// Identify verifies token. Every failure wraps domain.ErrUnauthenticated
// together with its cause.
func (g *Guard) Identify(ctx context.Context, token string) (*domain.User, error) {
	user, err := g.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrAuthenticationUnavailable) {
			g.logger.Error().Err(err).Msg("session verification unavailable")
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	return user, nil
}

// Check verifies token and then requires the user's role to hold capability.
func (g *Guard) Check(ctx context.Context, token string, capability domain.Capability) (*domain.User, error) {
	user, err := g.Identify(ctx, token)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(user.Role, capability) {
		g.logger.Debug().
			Str("user_id", user.ID).
			Str("role", string(user.Role)).
			Str("capability", string(capability)).
			Msg("capability denied")
		return nil, fmt.Errorf("%w: role %s lacks %s", domain.ErrForbidden, user.Role, capability)
	}
	return user, nil
}

// Run executes op only when token is valid and its user holds capability.
// Errors returned by op are passed through unchanged. It is the entry point
// for callers outside HTTP; middleware.RequireCapability performs the same
// Check before a handler runs.
func Run[T any](ctx context.Context, g *Guard, token string, capability domain.Capability, op func(ctx context.Context, actor *domain.User) (T, error)) (T, error) {
	actor, err := g.Check(ctx, token, capability)
	if err != nil {
		var zero T
		return zero, err
	}
	return op(ctx, actor)
}
