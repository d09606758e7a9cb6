package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/mrt-platform/maintenance-tracker/internal/api/metrics"
	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

// RequireCapability lets the request through only when the session user's
// role holds capability. The handler never runs otherwise.
func RequireCapability(guard Guard, capability domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := guard.Check(c.Request().Context(), BearerToken(c), capability)
			metrics.AuthorizationDecisionsTotal.WithLabelValues(string(capability), decisionOutcome(err)).Inc()
			if err != nil {
				return err
			}
			c.Set(ActorKey, actor)
			return next(c)
		}
	}
}
