package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/store"
	"github.com/parleyhq/parley/pkg/idx"
)

const maxCategoryNameLength = 45

type CategoryService struct {
	Store store.Store
}

// List returns the categories the viewer may see. Admins see everything;
// everyone else sees non-private categories plus their granted private ones.
// A nil viewer is a guest.
func (s *CategoryService) List(ctx context.Context, viewer *domain.User, nameFilter string, page store.Page) ([]domain.Category, error) {
	if viewer != nil && viewer.IsAdmin {
		return s.Store.Categories().ListCategories(ctx, nameFilter, page)
	}

	userID := ""
	if viewer != nil {
		userID = viewer.ID
	}
	return s.Store.Categories().ListVisibleCategories(ctx, userID, nameFilter, page)
}

// TopicsByCategory lists a category's topics, enforcing read access on
// private categories.
func (s *CategoryService) TopicsByCategory(ctx context.Context, viewer *domain.User, categoryID, titleFilter string, sort store.TopicSort, page store.Page) ([]domain.Topic, error) {
	category, err := s.Store.Categories().GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("category lookup: %w", err)
	}

	if err := s.requireReadAccess(ctx, viewer, category); err != nil {
		return nil, err
	}

	return s.Store.Topics().ListTopicsByCategory(ctx, categoryID, titleFilter, sort, page)
}

// Create adds a new category. Admin-only.
func (s *CategoryService) Create(ctx context.Context, actor domain.User, name, privacy string) (domain.Category, error) {
	if !actor.IsAdmin {
		return domain.Category{}, ErrForbidden
	}
	if name == "" || len(name) > maxCategoryNameLength {
		return domain.Category{}, fmt.Errorf("%w: category name must be between 1 and %d characters",
			ErrValidation, maxCategoryNameLength)
	}
	if privacy == "" {
		privacy = domain.PrivacyNonPrivate
	}
	if privacy != domain.PrivacyPrivate && privacy != domain.PrivacyNonPrivate {
		return domain.Category{}, fmt.Errorf("%w: privacy status must be private or non_private", ErrValidation)
	}

	category := domain.Category{
		ID:            idx.New().String(),
		Name:          name,
		PrivacyStatus: privacy,
		AccessStatus:  domain.AccessUnlocked,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.Store.Categories().CreateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Category{}, fmt.Errorf("%w: a category with that name already exists", ErrValidation)
		}
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

// SetPrivacy switches a category between private and non_private. Admin-only.
func (s *CategoryService) SetPrivacy(ctx context.Context, actor domain.User, categoryID, privacy string) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}
	if privacy != domain.PrivacyPrivate && privacy != domain.PrivacyNonPrivate {
		return fmt.Errorf("%w: privacy status must be private or non_private", ErrValidation)
	}

	err := s.Store.Categories().SetPrivacyStatus(ctx, categoryID, privacy)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Lock closes a category for new topics. Admin-only.
func (s *CategoryService) Lock(ctx context.Context, actor domain.User, categoryID string) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}

	err := s.Store.Categories().SetAccessStatus(ctx, categoryID, domain.AccessLocked)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// GrantAccess gives a user read (and optionally write) access to a private
// category. Admin-only.
func (s *CategoryService) GrantAccess(ctx context.Context, actor domain.User, categoryID, username string, write bool) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}

	category, err := s.Store.Categories().GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("category lookup: %w", err)
	}
	if !category.IsPrivate() {
		return fmt.Errorf("%w: access grants only apply to private categories", ErrValidation)
	}

	target, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownUser
		}
		return fmt.Errorf("grant target lookup: %w", err)
	}

	return s.Store.Categories().UpsertAccess(ctx, domain.CategoryAccess{
		CategoryID:  categoryID,
		UserID:      target.ID,
		WriteAccess: write,
	})
}

// RevokeAccess removes a user's grant on a category. Admin-only.
func (s *CategoryService) RevokeAccess(ctx context.Context, actor domain.User, categoryID, username string) error {
	if !actor.IsAdmin {
		return ErrForbidden
	}

	target, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnknownUser
		}
		return fmt.Errorf("revoke target lookup: %w", err)
	}

	err = s.Store.Categories().RevokeAccess(ctx, categoryID, target.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// PrivilegedUsers lists who holds grants on a private category. Admin-only.
func (s *CategoryService) PrivilegedUsers(ctx context.Context, actor domain.User, categoryID string) ([]domain.PrivilegedUser, error) {
	if !actor.IsAdmin {
		return nil, ErrForbidden
	}

	category, err := s.Store.Categories().GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("category lookup: %w", err)
	}
	if !category.IsPrivate() {
		return nil, fmt.Errorf("%w: the category is not private", ErrValidation)
	}

	return s.Store.Categories().ListPrivilegedUsers(ctx, categoryID)
}

// requireReadAccess enforces private-category visibility: admins always
// pass, guests never do, and plain users need a grant.
func (s *CategoryService) requireReadAccess(ctx context.Context, viewer *domain.User, category domain.Category) error {
	if !category.IsPrivate() {
		return nil
	}
	if viewer == nil {
		return ErrForbidden
	}
	if viewer.IsAdmin {
		return nil
	}

	_, err := s.Store.Categories().GetAccess(ctx, category.ID, viewer.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrForbidden
	}
	return err
}
