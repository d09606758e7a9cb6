package domain

import (
	"strings"
	"time"
)

// Role identifies the capability set a user holds.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTechnician Role = "technician"
)

// DefaultRole is assigned to self-service registrations.
const DefaultRole = RoleTechnician

// MinSecretLength is the only password policy enforced.
const MinSecretLength = 6

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleManager, RoleTechnician}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTechnician:
		return true
	}
	return false
}

// User is the stored account record. It carries the credential and must never
// be rendered to clients directly; use View.
type User struct {
	ID          string
	Email       string
	Name        string
	Role        Role
	PhoneNumber string
	Credential  Credential
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserView is the outward projection of a User. It has no credential field.
type UserView struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// View returns the credential-free projection of u.
func (u User) View() UserView {
	return UserView{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (u User) RecordID() string           { return u.ID }
func (u User) RecordCreatedAt() time.Time { return u.CreatedAt }

// UserFields is a partial update of the profile fields of a User.
// Nil pointers leave the field unchanged.
type UserFields struct {
	Email       *string
	Name        *string
	Role        *Role
	PhoneNumber *string
}

// Apply copies the set fields onto u.
func (f UserFields) Apply(u *User) {
	if f.Email != nil {
		u.Email = strings.TrimSpace(*f.Email)
	}
	if f.Name != nil {
		u.Name = *f.Name
	}
	if f.Role != nil {
		u.Role = *f.Role
	}
	if f.PhoneNumber != nil {
		u.PhoneNumber = *f.PhoneNumber
	}
}

// NormalizeEmail is the comparison key for emails: trimmed and lower-cased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SameEmail reports whether a and b identify the same account.
func SameEmail(a, b string) bool {
	return NormalizeEmail(a) == NormalizeEmail(b)
}
