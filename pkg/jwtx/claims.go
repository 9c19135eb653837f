package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Access tokens are short-lived on purpose: with no
// server-side revocation, the short window is the primary defence against a
// leaked access token. Refresh tokens get a much longer window and act as
// the session-liveness mechanism.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// AccessClaims is the payload of a short-lived access token: who the caller
// is and whether they hold admin rights. Access tokens never carry a
// binding fingerprint; its presence marks a refresh token.
type AccessClaims struct {
	jwt.RegisteredClaims

	IsAdmin bool `json:"is_admin"`
}

// RefreshClaims is the payload of a refresh token. AccessFingerprint is a
// one-way Argon2id hash of the exact serialized access token string this
// refresh token was issued alongside. The pair is only usable together:
// re-encoding the access token, even with identical claims, produces a
// different string and breaks the binding.
type RefreshClaims struct {
	jwt.RegisteredClaims

	AccessFingerprint string `json:"atf"`
}

// NewAccessClaims builds minimally-correct access claims.
func NewAccessClaims(subject string, isAdmin bool, ttl time.Duration, now time.Time) AccessClaims {
	return AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		IsAdmin: isAdmin,
	}
}

// NewRefreshClaims builds refresh claims bound to an access-token fingerprint.
func NewRefreshClaims(subject, fingerprint string, ttl time.Duration, now time.Time) RefreshClaims {
	return RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		AccessFingerprint: fingerprint,
	}
}
