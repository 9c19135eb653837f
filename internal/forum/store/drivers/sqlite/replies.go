package sqlite

import (
	"context"
	"database/sql"

	"github.com/parleyhq/parley/internal/forum/domain"
)

type repliesRepo struct {
	db querier
}

// replySelect carries the vote tallies alongside the row so the domain type
// is always fully populated.
const replySelect = `
	SELECT r.id, r.topic_id, r.author_id, r.content, r.is_best, r.created_at,
	       COALESCE(SUM(CASE WHEN v.value = 1 THEN 1 ELSE 0 END), 0)  AS upvotes,
	       COALESCE(SUM(CASE WHEN v.value = -1 THEN 1 ELSE 0 END), 0) AS downvotes
	FROM replies r
	LEFT JOIN votes v ON v.reply_id = r.id`

func (r *repliesRepo) GetReplyByID(ctx context.Context, id string) (domain.Reply, error) {
	rows, err := r.db.QueryContext(ctx,
		replySelect+` WHERE r.id = ? GROUP BY r.id`, id)
	if err != nil {
		return domain.Reply{}, err
	}
	defer rows.Close()

	out, err := collectReplies(rows)
	if err != nil {
		return domain.Reply{}, err
	}
	if len(out) == 0 {
		return domain.Reply{}, mapNotFound(sql.ErrNoRows)
	}
	return out[0], nil
}

func (r *repliesRepo) ListRepliesByTopic(ctx context.Context, topicID string) ([]domain.Reply, error) {
	rows, err := r.db.QueryContext(ctx,
		replySelect+` WHERE r.topic_id = ? GROUP BY r.id ORDER BY r.created_at`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReplies(rows)
}

func (r *repliesRepo) CreateReply(ctx context.Context, reply domain.Reply) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO replies (id, topic_id, author_id, content, is_best, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		reply.ID, reply.TopicID, reply.AuthorID, reply.Content, reply.IsBest, reply.CreatedAt)
	return err
}

func (r *repliesRepo) UpdateReplyContent(ctx context.Context, replyID, content string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE replies SET content = ? WHERE id = ?`, content, replyID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *repliesRepo) HasBestReply(ctx context.Context, topicID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM replies WHERE topic_id = ? AND is_best = 1`, topicID).Scan(&n)
	return n > 0, err
}

func (r *repliesRepo) MarkBestReply(ctx context.Context, replyID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE replies SET is_best = 1 WHERE id = ?`, replyID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func collectReplies(rows *sql.Rows) ([]domain.Reply, error) {
	var out []domain.Reply
	for rows.Next() {
		var rep domain.Reply
		err := rows.Scan(&rep.ID, &rep.TopicID, &rep.AuthorID, &rep.Content,
			&rep.IsBest, &rep.CreatedAt, &rep.Upvotes, &rep.Downvotes)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
