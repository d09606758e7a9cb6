package redis

import (
	"encoding/json"
	"time"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

// Codec converts records to and from their stored bytes.
type Codec[T any] interface {
	Marshal(T) ([]byte, error)
	Unmarshal([]byte) (T, error)
}

// JSONCodec stores a record as its JSON encoding.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Marshal(v T) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec[T]) Unmarshal(b []byte) (T, error) {
	var v T
	err := json.Unmarshal(b, &v)
	return v, err
}

// userRecord is the stored shape of a domain.User. It is the only place the
// credential is serialized.
type userRecord struct {
	ID               string                `json:"id"`
	Email            string                `json:"email"`
	Name             string                `json:"name"`
	Role             domain.Role           `json:"role"`
	PhoneNumber      string                `json:"phoneNumber,omitempty"`
	CredentialKind   domain.CredentialKind `json:"credentialKind"`
	CredentialSecret string                `json:"credentialSecret"`
	CreatedAt        time.Time             `json:"createdAt"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

// UserCodec stores users together with their credential variant.
type UserCodec struct{}

func (UserCodec) Marshal(u domain.User) ([]byte, error) {
	kind, secret := domain.EncodeCredential(u.Credential)
	return json.Marshal(userRecord{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		PhoneNumber:      u.PhoneNumber,
		CredentialKind:   kind,
		CredentialSecret: secret,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	})
}

func (UserCodec) Unmarshal(b []byte) (domain.User, error) {
	var r userRecord
	if err := json.Unmarshal(b, &r); err != nil {
		return domain.User{}, err
	}
	credential, err := domain.DecodeCredential(r.CredentialKind, r.CredentialSecret)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:          r.ID,
		Email:       r.Email,
		Name:        r.Name,
		Role:        r.Role,
		PhoneNumber: r.PhoneNumber,
		Credential:  credential,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}
