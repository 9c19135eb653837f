package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/store"
	"github.com/parleyhq/parley/pkg/cryptox"
	"github.com/parleyhq/parley/pkg/idx"
)

const (
	minUsernameLength = 4
	maxUsernameLength = 60
)

type UserService struct {
	Store store.Store
	Auth  *AuthService
}

// Register creates an account and logs it straight in. The password must
// pass the policy before anything is stored.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.User, domain.TokenPair, error) {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return domain.User{}, domain.TokenPair{},
			fmt.Errorf("%w: username must be between %d and %d characters",
				ErrValidation, minUsernameLength, maxUsernameLength)
	}

	if err := cryptox.CheckPasswordPolicy(password); err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, domain.TokenPair{}, ErrUsernameTaken
		}
		return domain.User{}, domain.TokenPair{}, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.Auth.IssueTokens(user)
	if err != nil {
		return domain.User{}, domain.TokenPair{}, err
	}

	return user, pair, nil
}

// SetAdmin promotes a user to admin. Admin-only.
func (s *UserService) SetAdmin(ctx context.Context, actor domain.User, username string) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}

	target, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownUser
		}
		return fmt.Errorf("admin target lookup: %w", err)
	}

	return s.Store.Users().SetAdmin(ctx, target.ID, true)
}
