package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mrt-platform/maintenance-tracker/internal/api/metrics"
	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a session token.
//
// When role is present it is checked against the stored role; otherwise the
// stored role is used.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", metrics.OutcomeFailure).Inc()
		return err
	}

	ctx := c.Request().Context()
	var (
		result *ports.AuthResult
		err    error
	)
	if req.Role != "" {
		result, err = h.authService.Authenticate(ctx, req.Email, req.Password, domain.Role(req.Role))
	} else {
		result, err = h.authService.Login(ctx, req.Email, req.Password)
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", attemptOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{User: result.User, Token: result.Token})
}

// Register creates a technician account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", metrics.OutcomeFailure).Inc()
		return err
	}

	result, err := h.authService.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	metrics.AuthAttemptsTotal.WithLabelValues("register", attemptOutcome(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: result.User, Token: result.Token})
}

// Me returns the session user and the capabilities of their role.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{
		User:        actor.View(),
		Permissions: domain.Permissions(actor.Role),
	})
}

func attemptOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, domain.ErrAuthenticationUnavailable):
		return metrics.OutcomeError
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrIdentityExists):
		return metrics.OutcomeFailure
	default:
		return metrics.OutcomeError
	}
}
