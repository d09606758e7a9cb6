package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

// UserService covers admin user management and self-service profile edits.
// Secrets never leave it: every result is a domain.UserView.
type UserService struct {
	store      ports.CredentialStore
	bcryptCost int
	logger     zerolog.Logger
	now        func() time.Time
}

func NewUserService(store ports.CredentialStore, bcryptCost int, logger zerolog.Logger) *UserService {
	return &UserService{store: store, bcryptCost: bcryptCost, logger: logger, now: time.Now}
}

// List returns every user, or only those holding role when it is set.
func (s *UserService) List(ctx context.Context, role domain.Role) ([]domain.UserView, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserView, 0, len(users))
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u.View())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.UserView, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := u.View()
	return &v, nil
}

func (s *UserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.UserView, error) {
	switch {
	case strings.TrimSpace(in.Email) == "":
		return nil, domain.Required("email")
	case strings.TrimSpace(in.Name) == "":
		return nil, domain.Required("name")
	case !in.Role.Valid():
		return nil, domain.Invalid("role", "must be admin, manager or technician")
	case len(in.Password) < domain.MinSecretLength:
		return nil, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", domain.MinSecretLength))
	}

	credential, err := hashSecret(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:          uuid.NewString(),
		Email:       strings.TrimSpace(in.Email),
		Name:        strings.TrimSpace(in.Name),
		Role:        in.Role,
		PhoneNumber: in.PhoneNumber,
		Credential:  credential,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created")
	v := user.View()
	return &v, nil
}

func (s *UserService) Update(ctx context.Context, id string, fields domain.UserFields) (*domain.UserView, error) {
	if fields.Role != nil && !fields.Role.Valid() {
		return nil, domain.Invalid("role", "must be admin, manager or technician")
	}
	if fields.Email != nil && strings.TrimSpace(*fields.Email) == "" {
		return nil, domain.Required("email")
	}
	if fields.Name != nil && strings.TrimSpace(*fields.Name) == "" {
		return nil, domain.Required("name")
	}

	u, err := s.store.UpdateFields(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", id).Msg("user updated")
	v := u.View()
	return &v, nil
}

func (s *UserService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if actor.ID == id {
		return domain.Invalid("id", "cannot delete your own account")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Str("deleted_by", actor.ID).Msg("user deleted")
	return nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor *domain.User, name, phoneNumber *string) (*domain.UserView, error) {
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, domain.Required("name")
	}
	u, err := s.store.UpdateFields(ctx, actor.ID, domain.UserFields{Name: name, PhoneNumber: phoneNumber})
	if err != nil {
		return nil, err
	}
	v := u.View()
	return &v, nil
}

// DemoUser is an account created by SeedDemoUsers.
type DemoUser struct {
	Email    string
	Name     string
	Role     domain.Role
	Password string
}

// DemoUsers are the default accounts of a fresh demo installation.
var DemoUsers = []DemoUser{
	{Email: "admin@example.com", Name: "Admin User", Role: domain.RoleAdmin, Password: "admin123"},
	{Email: "manager@example.com", Name: "Manager User", Role: domain.RoleManager, Password: "manager123"},
	{Email: "technician@example.com", Name: "Technician User", Role: domain.RoleTechnician, Password: "tech123"},
}

// SeedDemoUsers creates the demo accounts that do not exist yet.
func SeedDemoUsers(ctx context.Context, users *UserService) error {
	for _, d := range DemoUsers {
		_, err := users.Create(ctx, ports.CreateUserInput{
			Email:    d.Email,
			Name:     d.Name,
			Role:     d.Role,
			Password: d.Password,
		})
		if err != nil && !errors.Is(err, domain.ErrDuplicateIdentity) {
			return fmt.Errorf("seed %s: %w", d.Email, err)
		}
	}
	return nil
}
