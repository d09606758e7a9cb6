package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mrt-platform/maintenance-tracker/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// JWTCodec issues HS256-signed session tokens carrying the subject user id,
// issue time, expiry and a unique token id.
type JWTCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTCodec(secret string, ttl time.Duration) *JWTCodec {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &JWTCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the fixed lifetime of every issued token.
func (c *JWTCodec) TTL() time.Duration { return c.ttl }

func (c *JWTCodec) Issue(userID string, now time.Time) (string, domain.SessionToken, error) {
	issued := now.UTC().Truncate(time.Second)
	session := domain.SessionToken{
		ID:            uuid.NewString(),
		SubjectUserID: userID,
		IssuedAt:      issued,
		ExpiresAt:     issued.Add(c.ttl),
	}

	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   session.SubjectUserID,
		IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", domain.SessionToken{}, err
	}
	return signed, session, nil
}

func (c *JWTCodec) Decode(token string) (domain.SessionToken, error) {
	if token == "" {
		return domain.SessionToken{}, domain.ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.SessionToken{}, domain.ErrExpiredToken
		}
		return domain.SessionToken{}, domain.ErrInvalidToken
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return domain.SessionToken{}, domain.ErrInvalidToken
	}

	session := domain.SessionToken{
		ID:            claims.ID,
		SubjectUserID: claims.Subject,
		IssuedAt:      claims.IssuedAt.Time.UTC(),
		ExpiresAt:     claims.ExpiresAt.Time.UTC(),
	}
	if session.Expired(c.now()) {
		return domain.SessionToken{}, domain.ErrExpiredToken
	}
	return session, nil
}
