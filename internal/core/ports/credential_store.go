package ports

import (
	"context"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

// CredentialStore holds user records. Email comparison is case-insensitive
// and ignores surrounding whitespace.
type CredentialStore interface {
	// FindByEmailAndRole returns domain.ErrUserNotFound when no record matches
	// both the email and the role.
	FindByEmailAndRole(ctx context.Context, email string, role domain.Role) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Insert returns domain.ErrDuplicateIdentity when the email is taken.
	Insert(ctx context.Context, user *domain.User) error
	UpdateSecret(ctx context.Context, id string, credential domain.Credential) error
	// UpdateFields returns domain.ErrDuplicateIdentity when an email change
	// collides with another user.
	UpdateFields(ctx context.Context, id string, fields domain.UserFields) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}
