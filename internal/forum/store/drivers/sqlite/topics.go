package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/store"
)

type topicsRepo struct {
	db querier
}

const topicColumns = `id, title, text, category_id, author_id, is_locked, created_at`

func (r *topicsRepo) GetTopicByID(ctx context.Context, id string) (domain.Topic, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+topicColumns+` FROM topics WHERE id = ?`, id)
	return scanTopic(row)
}

func (r *topicsRepo) ListTopicsByCategory(ctx context.Context, categoryID, titleFilter string, sort store.TopicSort, page store.Page) ([]domain.Topic, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+topicColumns+` FROM topics
		 WHERE category_id = ? AND title LIKE ?
		 ORDER BY created_at `+orderDirection(sort)+`
		 LIMIT ? OFFSET ?`,
		categoryID, likePattern(titleFilter), limitOf(page), page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTopics(rows)
}

func (r *topicsRepo) SearchTopics(ctx context.Context, terms []string, userID string, adminView bool, sort store.TopicSort, page store.Page) ([]domain.Topic, error) {
	var sb strings.Builder
	args := make([]any, 0, len(terms)*2+3)

	sb.WriteString(`SELECT t.id, t.title, t.text, t.category_id, t.author_id, t.is_locked, t.created_at
		 FROM topics t
		 JOIN categories c ON c.id = t.category_id
		 WHERE 1 = 1`)

	for _, term := range terms {
		sb.WriteString(` AND (t.title LIKE ? OR t.text LIKE ?)`)
		p := likePattern(term)
		args = append(args, p, p)
	}

	if !adminView {
		sb.WriteString(` AND (c.privacy_status = 'non_private'
			 OR EXISTS (SELECT 1 FROM category_access a
			            WHERE a.category_id = c.id AND a.user_id = ?))`)
		args = append(args, userID)
	}

	sb.WriteString(` ORDER BY t.created_at ` + orderDirection(sort) + ` LIMIT ? OFFSET ?`)
	args = append(args, limitOf(page), page.Offset)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTopics(rows)
}

func (r *topicsRepo) CountTopicsByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM topics WHERE category_id = ?`, categoryID).Scan(&n)
	return n, err
}

func (r *topicsRepo) CreateTopic(ctx context.Context, t domain.Topic) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO topics (id, title, text, category_id, author_id, is_locked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Text, t.CategoryID, t.AuthorID, t.IsLocked, t.CreatedAt)
	return err
}

func (r *topicsRepo) UpdateTopic(ctx context.Context, topicID, title, text string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE topics SET title = ?, text = ? WHERE id = ?`, title, text, topicID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *topicsRepo) LockTopic(ctx context.Context, topicID string) (bool, error) {
	var locked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT is_locked FROM topics WHERE id = ?`, topicID).Scan(&locked)
	if err != nil {
		return false, mapNotFound(err)
	}
	if locked {
		return true, nil
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE topics SET is_locked = 1 WHERE id = ?`, topicID)
	return false, err
}

func scanTopic(row rowScanner) (domain.Topic, error) {
	var t domain.Topic
	err := row.Scan(&t.ID, &t.Title, &t.Text, &t.CategoryID, &t.AuthorID, &t.IsLocked, &t.CreatedAt)
	if err != nil {
		return domain.Topic{}, mapNotFound(err)
	}
	return t, nil
}

func collectTopics(rows *sql.Rows) ([]domain.Topic, error) {
	var out []domain.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func orderDirection(sort store.TopicSort) string {
	if sort == store.TopicSortDesc {
		return "DESC"
	}
	return "ASC"
}
