package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/store"
	"github.com/parleyhq/parley/pkg/cryptox"
	"github.com/parleyhq/parley/pkg/jwtx"
	"github.com/parleyhq/parley/pkg/slogx"
)

// AuthService owns the stateless session lifecycle: issuing access/refresh
// pairs, resolving identities from access tokens, and rotating pairs through
// the refresh flow. The two tokens are cryptographically bound: the refresh
// token carries an argon2 fingerprint of the exact access token string it
// was issued with, so a refresh token is useless with any other access
// token.
type AuthService struct {
	Store      store.Store
	Codec      *jwtx.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login verifies a username/password pair and mints a token pair. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrBadCredentials
		}
		return domain.TokenPair{}, fmt.Errorf("login lookup: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		slogx.FromContext(ctx).Info("login failed", "username", username)
		return domain.TokenPair{}, ErrBadCredentials
	}

	return s.IssueTokens(user)
}

// IssueTokens mints a bound access/refresh pair for a user. The access token
// is serialized first so its literal string can be fingerprinted into the
// refresh token's claims.
func (s *AuthService) IssueTokens(user domain.User) (domain.TokenPair, error) {
	if user.Username == "" {
		return domain.TokenPair{}, ErrUnauthorized
	}

	now := time.Now()

	access, err := s.Codec.Encode(jwtx.NewAccessClaims(user.Username, user.IsAdmin, s.AccessTTL, now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("encode access token: %w", err)
	}

	// The fingerprint binds the refresh token to this exact serialized
	// access token. Argon2 keys the whole input, so altering a single
	// character of the access token breaks the binding.
	fingerprint, err := cryptox.HashPassword(access)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("fingerprint access token: %w", err)
	}

	refresh, err := s.Codec.Encode(jwtx.NewRefreshClaims(user.Username, fingerprint, s.RefreshTTL, now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("encode refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
	}, nil
}

// ResolveIdentity validates an access token end to end and returns the user
// it names. Every failure collapses to ErrUnauthorized.
func (s *AuthService) ResolveIdentity(ctx context.Context, accessToken string) (domain.User, error) {
	if accessToken == "" {
		return domain.User{}, ErrUnauthorized
	}

	claims, err := s.Codec.DecodeAccess(accessToken)
	if err != nil {
		return domain.User{}, ErrUnauthorized
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, fmt.Errorf("identity lookup: %w", err)
	}

	return user, nil
}

// Refresh exchanges a bound token pair for a fresh one. The access token may
// be expired, but its signature and structure must be intact and it must be
// the exact token the refresh token was issued with. The refresh token
// itself must be fully valid, expiry included.
func (s *AuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (domain.TokenPair, error) {
	refreshClaims, err := s.Codec.DecodeRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, ErrUnauthorized
	}

	// Binding check: the presented access token string must hash to the
	// fingerprint carried by the refresh token.
	if err := cryptox.VerifyPassword(accessToken, refreshClaims.AccessFingerprint); err != nil {
		slogx.FromContext(ctx).Info("refresh rejected: access token does not match binding",
			"subject", refreshClaims.Subject)
		return domain.TokenPair{}, ErrUnauthorized
	}

	// The access token only contributes its subject here, so expiry is
	// tolerated. Signature and claim shape are still enforced.
	accessClaims, err := s.Codec.DecodeAccessAllowExpired(accessToken)
	if err != nil {
		return domain.TokenPair{}, ErrUnauthorized
	}
	if accessClaims.Subject != refreshClaims.Subject {
		return domain.TokenPair{}, ErrUnauthorized
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, accessClaims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrUnauthorized
		}
		return domain.TokenPair{}, fmt.Errorf("refresh lookup: %w", err)
	}

	return s.IssueTokens(user)
}
