package domain

import "fmt"

// Credential is the stored secret of a user. It is a closed set:
// HashedCredential or LegacyPlaintextCredential.
type Credential interface {
	credentialKind() CredentialKind
}

// CredentialKind is the persisted discriminator of a Credential.
type CredentialKind string

const (
	CredentialBcrypt          CredentialKind = "bcrypt"
	CredentialLegacyPlaintext CredentialKind = "legacy_plaintext"
)

// HashedCredential holds a salted bcrypt hash.
type HashedCredential struct {
	Hash []byte
}

// LegacyPlaintextCredential holds a secret imported from records that predate
// hashing. It is only ever compared, and is replaced with a HashedCredential
// on the next password change.
type LegacyPlaintextCredential struct {
	Secret string
}

func (HashedCredential) credentialKind() CredentialKind          { return CredentialBcrypt }
func (LegacyPlaintextCredential) credentialKind() CredentialKind { return CredentialLegacyPlaintext }

// EncodeCredential splits c into its persisted kind and value.
func EncodeCredential(c Credential) (CredentialKind, string) {
	switch v := c.(type) {
	case HashedCredential:
		return CredentialBcrypt, string(v.Hash)
	case LegacyPlaintextCredential:
		return CredentialLegacyPlaintext, v.Secret
	default:
		return "", ""
	}
}

// DecodeCredential rebuilds a Credential from its persisted form.
func DecodeCredential(kind CredentialKind, value string) (Credential, error) {
	switch kind {
	case CredentialBcrypt:
		return HashedCredential{Hash: []byte(value)}, nil
	case CredentialLegacyPlaintext:
		return LegacyPlaintextCredential{Secret: value}, nil
	default:
		return nil, fmt.Errorf("unknown credential kind %q", kind)
	}
}
