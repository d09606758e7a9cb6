package domain

import "time"

// SessionToken is the decoded content of an issued token.
type SessionToken struct {
	ID            string
	SubjectUserID string
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Expired reports whether the token is no longer valid at now.
func (t SessionToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
