package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
	"github.com/mrt-platform/maintenance-tracker/internal/core/ports"
)

// hashSecret returns a bcrypt credential for secret.
func hashSecret(secret string, cost int) (domain.Credential, error) {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	return domain.HashedCredential{Hash: hash}, nil
}

// secretMatches compares secret against the stored credential using the one
// strategy that belongs to its variant.
func secretMatches(c domain.Credential, secret string) bool {
	switch v := c.(type) {
	case domain.HashedCredential:
		return bcrypt.CompareHashAndPassword(v.Hash, []byte(secret)) == nil
	case domain.LegacyPlaintextCredential:
		return subtle.ConstantTimeCompare([]byte(v.Secret), []byte(secret)) == 1
	default:
		return false
	}
}

// collectionCredentialStore implements ports.CredentialStore on top of a
// generic record collection by scanning it, as the in-memory and key-value
// backends have no secondary indexes.
type collectionCredentialStore struct {
	users ports.ResourceStore[domain.User]
	now   func() time.Time
}

// NewCollectionCredentialStore adapts a user collection to a CredentialStore.
func NewCollectionCredentialStore(users ports.ResourceStore[domain.User]) ports.CredentialStore {
	return &collectionCredentialStore{users: users, now: time.Now}
}

func (s *collectionCredentialStore) find(ctx context.Context, match func(domain.User) bool) (*domain.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range all {
		if match(all[i]) {
			u := all[i]
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *collectionCredentialStore) FindByEmailAndRole(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	return s.find(ctx, func(u domain.User) bool {
		return u.Role == role && domain.SameEmail(u.Email, email)
	})
}

func (s *collectionCredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.find(ctx, func(u domain.User) bool {
		return domain.SameEmail(u.Email, email)
	})
}

func (s *collectionCredentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, userStoreErr(err)
	}
	return &u, nil
}

func (s *collectionCredentialStore) List(ctx context.Context) ([]*domain.User, error) {
	all, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]*domain.User, len(all))
	for i := range all {
		out[i] = &all[i]
	}
	return out, nil
}

func (s *collectionCredentialStore) Insert(ctx context.Context, user *domain.User) error {
	err := s.users.InsertUnless(ctx, *user, func(existing domain.User) bool {
		return domain.SameEmail(existing.Email, user.Email)
	})
	if errors.Is(err, domain.ErrRecordConflict) {
		return domain.ErrDuplicateIdentity
	}
	return err
}

func (s *collectionCredentialStore) UpdateSecret(ctx context.Context, id string, credential domain.Credential) error {
	_, err := s.users.Update(ctx, id, func(u *domain.User) error {
		u.Credential = credential
		u.UpdatedAt = s.now().UTC()
		return nil
	})
	return userStoreErr(err)
}

func (s *collectionCredentialStore) UpdateFields(ctx context.Context, id string, fields domain.UserFields) (*domain.User, error) {
	var conflict func(existing domain.User) bool
	if fields.Email != nil {
		email := *fields.Email
		conflict = func(existing domain.User) bool {
			return domain.SameEmail(existing.Email, email)
		}
	}

	updated, err := s.users.UpdateUnless(ctx, id, func(u *domain.User) error {
		fields.Apply(u)
		u.UpdatedAt = s.now().UTC()
		return nil
	}, conflict)
	if errors.Is(err, domain.ErrRecordConflict) {
		return nil, domain.ErrDuplicateIdentity
	}
	if err != nil {
		return nil, userStoreErr(err)
	}
	return &updated, nil
}

func (s *collectionCredentialStore) Delete(ctx context.Context, id string) error {
	return userStoreErr(s.users.Delete(ctx, id))
}

func userStoreErr(err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.ErrUserNotFound
	}
	return err
}
