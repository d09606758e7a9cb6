package ports

import (
	"context"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

type CreateUserInput struct {
	Email       string
	Name        string
	Role        domain.Role
	Password    string
	PhoneNumber string
}

type UserService interface {
	List(ctx context.Context, role domain.Role) ([]domain.UserView, error)
	Get(ctx context.Context, id string) (*domain.UserView, error)
	Create(ctx context.Context, in CreateUserInput) (*domain.UserView, error)
	Update(ctx context.Context, id string, fields domain.UserFields) (*domain.UserView, error)
	Delete(ctx context.Context, actor *domain.User, id string) error
	// UpdateProfile lets a user change their own name and phone number.
	UpdateProfile(ctx context.Context, actor *domain.User, name, phoneNumber *string) (*domain.UserView, error)
}
