package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mrt-platform/maintenance-tracker/internal/api/metrics"
	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

// ActorKey is the echo context key under which the authenticated user is stored.
const ActorKey = "actor"

// Guard is the subset of service.Guard the middleware needs.
type Guard interface {
	Identify(ctx context.Context, token string) (*domain.User, error)
	Check(ctx context.Context, token string, capability domain.Capability) (*domain.User, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is missing or malformed. An empty token fails
// verification downstream.
func BearerToken(c echo.Context) string {
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Session requires a valid session token and stores the user under ActorKey.
func Session(guard Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := guard.Identify(c.Request().Context(), BearerToken(c))
			if err != nil {
				metrics.AuthorizationDecisionsTotal.WithLabelValues("session", metrics.OutcomeUnauthenticated).Inc()
				return err
			}
			metrics.AuthorizationDecisionsTotal.WithLabelValues("session", metrics.OutcomeAllowed).Inc()
			c.Set(ActorKey, actor)
			return next(c)
		}
	}
}

// Actor returns the user stored by Session or RequireCapability.
func Actor(c echo.Context) (*domain.User, bool) {
	actor, ok := c.Get(ActorKey).(*domain.User)
	return actor, ok && actor != nil
}

func decisionOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAllowed
	case errors.Is(err, domain.ErrForbidden):
		return metrics.OutcomeDenied
	default:
		return metrics.OutcomeUnauthenticated
	}
}
