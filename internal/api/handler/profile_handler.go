package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

// ProfileHandler serves the session user's own account.
type ProfileHandler struct {
	users ports.UserService
	auth  ports.AuthService
}

func NewProfileHandler(users ports.UserService, auth ports.AuthService) *ProfileHandler {
	return &ProfileHandler{users: users, auth: auth}
}

// Get returns the session user's profile.
//
// @Summary      Get own profile
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserView
// @Failure      401  {object}  errorResponse
// @Router       /api/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actor.View())
}

// Update changes the session user's name and phone number.
//
// @Summary      Update own profile
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  domain.UserView
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/profile [put]
func (h *ProfileHandler) Update(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	view, err := h.users.UpdateProfile(c.Request().Context(), actor, req.Name, req.PhoneNumber)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// ChangePassword replaces the session user's password.
//
// @Summary      Change own password
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "New password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/profile/password [put]
func (h *ProfileHandler) ChangePassword(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if err := h.auth.ChangePassword(c.Request().Context(), actor.ID, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}
