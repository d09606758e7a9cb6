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

// AuthService implements authentication, self-service registration and
// secret rotation. It is the only issuer of session tokens.
type AuthService struct {
	store      ports.CredentialStore
	tokens     ports.TokenCodec
	bcryptCost int
	logger     zerolog.Logger
	now        func() time.Time
}

func NewAuthService(store ports.CredentialStore, tokens ports.TokenCodec, bcryptCost int, logger zerolog.Logger) *AuthService {
	return &AuthService{
		store:      store,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Authenticate verifies email, secret and the role the caller claims. The role
// is part of the identity claim: a correct secret with the wrong role fails
// exactly like an unknown email.
func (s *AuthService) Authenticate(ctx context.Context, email, secret string, role domain.Role) (*ports.AuthResult, error) {
	if err := requireCredentials(email, secret); err != nil {
		return nil, err
	}
	if role == "" {
		return nil, domain.Required("role")
	}

	user, err := s.store.FindByEmailAndRole(ctx, email, role)
	return s.completeLogin(user, err, secret)
}

// Login verifies email and secret, taking the role from the stored record.
func (s *AuthService) Login(ctx context.Context, email, secret string) (*ports.AuthResult, error) {
	if err := requireCredentials(email, secret); err != nil {
		return nil, err
	}

	user, err := s.store.FindByEmail(ctx, email)
	return s.completeLogin(user, err, secret)
}

func (s *AuthService) completeLogin(user *domain.User, lookupErr error, secret string) (*ports.AuthResult, error) {
	if lookupErr != nil {
		if errors.Is(lookupErr, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(lookupErr).Msg("credential lookup failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationUnavailable, lookupErr)
	}

	if !secretMatches(user.Credential, secret) {
		s.logger.Info().Str("user_id", user.ID).Msg("rejected login: secret mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Register creates a self-service account with the default role and signs the
// new user in.
func (s *AuthService) Register(ctx context.Context, email, secret, name string) (*ports.AuthResult, error) {
	if err := requireCredentials(email, secret); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, domain.Required("name")
	}
	if len(secret) < domain.MinSecretLength {
		return nil, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", domain.MinSecretLength))
	}

	credential, err := hashSecret(secret, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:         uuid.NewString(),
		Email:      strings.TrimSpace(email),
		Name:       strings.TrimSpace(name),
		Role:       domain.DefaultRole,
		Credential: credential,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.Insert(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateIdentity) {
			return nil, domain.ErrIdentityExists
		}
		s.logger.Error().Err(err).Msg("failed to persist registration")
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationUnavailable, err)
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	return s.issue(user)
}

// ChangePassword rotates the secret of userID. The new secret is always
// stored hashed, which also migrates legacy plaintext records.
func (s *AuthService) ChangePassword(ctx context.Context, userID, newSecret string) error {
	if newSecret == "" {
		return domain.Required("newPassword")
	}
	if len(newSecret) < domain.MinSecretLength {
		return domain.Invalid("newPassword", fmt.Sprintf("must be at least %d characters", domain.MinSecretLength))
	}

	credential, err := hashSecret(newSecret, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.store.UpdateSecret(ctx, userID, credential); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

func (s *AuthService) issue(user *domain.User) (*ports.AuthResult, error) {
	token, session, err := s.tokens.Issue(user.ID, s.now())
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to sign token")
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationUnavailable, err)
	}
	return &ports.AuthResult{Token: token, Session: session, User: user.View()}, nil
}

func requireCredentials(email, secret string) error {
	if strings.TrimSpace(email) == "" {
		return domain.Required("email")
	}
	if secret == "" {
		return domain.Required("password")
	}
	return nil
}
