package sqlite

import (
	"context"
	"database/sql"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/store"
)

type categoriesRepo struct {
	db querier
}

const categoryColumns = `id, name, privacy_status, access_status, created_at`

func (r *categoriesRepo) GetCategoryByID(ctx context.Context, id string) (domain.Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return scanCategory(row)
}

func (r *categoriesRepo) ListCategories(ctx context.Context, nameFilter string, page store.Page) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories
		 WHERE name LIKE ?
		 ORDER BY created_at
		 LIMIT ? OFFSET ?`,
		likePattern(nameFilter), limitOf(page), page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (r *categoriesRepo) ListVisibleCategories(ctx context.Context, userID, nameFilter string, page store.Page) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories c
		 WHERE c.name LIKE ?
		   AND (c.privacy_status = 'non_private'
		        OR EXISTS (SELECT 1 FROM category_access a
		                   WHERE a.category_id = c.id AND a.user_id = ?))
		 ORDER BY c.created_at
		 LIMIT ? OFFSET ?`,
		likePattern(nameFilter), userID, limitOf(page), page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCategories(rows)
}

func (r *categoriesRepo) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, privacy_status, access_status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.PrivacyStatus, c.AccessStatus, c.CreatedAt)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *categoriesRepo) SetPrivacyStatus(ctx context.Context, categoryID, privacy string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET privacy_status = ? WHERE id = ?`, privacy, categoryID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *categoriesRepo) SetAccessStatus(ctx context.Context, categoryID, access string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET access_status = ? WHERE id = ?`, access, categoryID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *categoriesRepo) GetAccess(ctx context.Context, categoryID, userID string) (domain.CategoryAccess, error) {
	var a domain.CategoryAccess
	err := r.db.QueryRowContext(ctx,
		`SELECT category_id, user_id, write_access FROM category_access
		 WHERE category_id = ? AND user_id = ?`,
		categoryID, userID).Scan(&a.CategoryID, &a.UserID, &a.WriteAccess)
	if err != nil {
		return domain.CategoryAccess{}, mapNotFound(err)
	}
	return a, nil
}

func (r *categoriesRepo) UpsertAccess(ctx context.Context, a domain.CategoryAccess) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO category_access (category_id, user_id, write_access)
		 VALUES (?, ?, ?)
		 ON CONFLICT (category_id, user_id) DO UPDATE SET write_access = excluded.write_access`,
		a.CategoryID, a.UserID, a.WriteAccess)
	return err
}

func (r *categoriesRepo) RevokeAccess(ctx context.Context, categoryID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM category_access WHERE category_id = ? AND user_id = ?`,
		categoryID, userID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *categoriesRepo) ListPrivilegedUsers(ctx context.Context, categoryID string) ([]domain.PrivilegedUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.username,
		        CASE WHEN a.write_access THEN 'read and write' ELSE 'read only' END
		 FROM category_access a
		 JOIN users u ON u.id = a.user_id
		 WHERE a.category_id = ?
		 ORDER BY u.username`,
		categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PrivilegedUser
	for rows.Next() {
		var p domain.PrivilegedUser
		if err := rows.Scan(&p.Username, &p.AccessLevel); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.PrivacyStatus, &c.AccessStatus, &c.CreatedAt)
	if err != nil {
		return domain.Category{}, mapNotFound(err)
	}
	return c, nil
}

func collectCategories(rows *sql.Rows) ([]domain.Category, error) {
	var out []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// likePattern wraps a filter for a LIKE clause; an empty filter matches all.
func likePattern(filter string) string {
	return "%" + filter + "%"
}

// limitOf maps a zero page limit to sqlite's "no limit" sentinel.
func limitOf(page store.Page) int {
	if page.Limit <= 0 {
		return -1
	}
	return page.Limit
}
