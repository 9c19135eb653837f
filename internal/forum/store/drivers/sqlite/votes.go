package sqlite

import (
	"context"

	"github.com/parleyhq/parley/internal/forum/domain"
)

type votesRepo struct {
	db querier
}

func (r *votesRepo) UpsertVote(ctx context.Context, replyID, userID string, vote domain.Vote) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO votes (reply_id, user_id, value)
		 VALUES (?, ?, ?)
		 ON CONFLICT (reply_id, user_id) DO UPDATE SET value = excluded.value`,
		replyID, userID, int(vote))
	return err
}

func (r *votesRepo) DeleteVote(ctx context.Context, replyID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM votes WHERE reply_id = ? AND user_id = ?`, replyID, userID)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}
