package handler

import (
	"strings"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"     validate:"required"`
}

type authResponse struct {
	User  domain.UserView `json:"user"`
	Token string          `json:"token"`
}

type meResponse struct {
	User        domain.UserView            `json:"user"`
	Permissions map[domain.Capability]bool `json:"permissions"`
}

// --- Profile ---

type updateProfileRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
}

type changePasswordRequest struct {
	NewPassword     string `json:"newPassword"     validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Issues ---

type createIssueRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category"`
	Status      string `json:"status"      validate:"omitempty,oneof=pending solved"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  string `json:"assignedTo"`
}

type updateIssueRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Status      *string `json:"status"      validate:"omitempty,oneof=pending solved"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  *string `json:"assignedTo"`
}

type assignIssueRequest struct {
	AssignedTo string `json:"assignedTo"`
}

// --- Reports ---

type createReportRequest struct {
	Title       string `json:"title"       validate:"required"`
	Description string `json:"description" validate:"required"`
	Type        string `json:"type"        validate:"omitempty,oneof=maintenance repair inspection other"`
	Date        string `json:"date"`
}

type updateReportRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Type        *string `json:"type" validate:"omitempty,oneof=maintenance repair inspection other"`
	Date        *string `json:"date"`
}

// --- Users ---

type createUserRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	Name        string `json:"name"        validate:"required"`
	Role        string `json:"role"        validate:"required,oneof=admin manager technician"`
	Password    string `json:"password"    validate:"required,min=6"`
	PhoneNumber string `json:"phoneNumber"`
}

type updateUserRequest struct {
	Email       *string `json:"email"       validate:"omitempty,email"`
	Name        *string `json:"name"`
	Role        *string `json:"role"        validate:"omitempty,oneof=admin manager technician"`
	PhoneNumber *string `json:"phoneNumber"`
}

// normalizer is implemented by requests that clean up their fields before
// validation.
type normalizer interface {
	normalize()
}

func (r *loginRequest) normalize()    { r.Email = strings.TrimSpace(r.Email) }
func (r *registerRequest) normalize() { r.Email = strings.TrimSpace(r.Email) }
func (r *createUserRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

func (r *updateUserRequest) normalize() {
	if r.Email != nil {
		trimmed := strings.TrimSpace(*r.Email)
		r.Email = &trimmed
	}
}
