package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mrt-platform/maintenance-tracker/internal/api/middleware"
	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

// ctxActor returns the user the auth middleware attached to the request.
// Reaching a handler without one means the route was registered without a
// guard.
func ctxActor(c echo.Context) (*domain.User, error) {
	actor, ok := middleware.Actor(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return actor, nil
}

// bindAndValidate decodes the request body into req, normalizes it and runs
// the registered validator over it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	return c.Validate(req)
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	return t, nil
}
