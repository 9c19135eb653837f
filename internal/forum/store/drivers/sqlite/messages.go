package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/store"
)

type messagesRepo struct {
	db querier
}

func (r *messagesRepo) CreateMessage(ctx context.Context, m domain.Message) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, author_id, subject, content, parent_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.AuthorID, m.Subject, m.Content, nullIfEmpty(m.ParentID), m.CreatedAt)
	return err
}

func (r *messagesRepo) AddRecipient(ctx context.Context, messageID, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO message_recipients (message_id, user_id) VALUES (?, ?)`,
		messageID, userID)
	return err
}

func (r *messagesRepo) MessageExists(ctx context.Context, messageID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM messages WHERE id = ?`, messageID).Scan(&n)
	return n > 0, err
}

// conversationSelect resolves one row per (message, recipient) pair with
// both usernames attached.
const conversationSelect = `
	SELECT m.id, m.subject, m.content, m.parent_id, m.created_at,
	       au.username AS author, ru.username AS recipient
	FROM messages m
	JOIN message_recipients mr ON mr.message_id = m.id
	JOIN users au ON au.id = m.author_id
	JOIN users ru ON ru.id = mr.user_id`

func (r *messagesRepo) ListConversations(ctx context.Context, userID string, sort store.TopicSort, page store.Page) ([]domain.ConversationMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		conversationSelect+`
		 WHERE m.author_id = ? OR mr.user_id = ?
		 ORDER BY m.created_at `+orderDirection(sort)+`
		 LIMIT ? OFFSET ?`,
		userID, userID, limitOf(page), page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConversation(rows)
}

func (r *messagesRepo) ListConversationWith(ctx context.Context, userID string, counterpartyIDs []string) ([]domain.ConversationMessage, error) {
	if len(counterpartyIDs) == 0 {
		return nil, nil
	}

	in := placeholders(len(counterpartyIDs))
	args := make([]any, 0, len(counterpartyIDs)*2+2)
	args = append(args, userID)
	for _, id := range counterpartyIDs {
		args = append(args, id)
	}
	args = append(args, userID)
	for _, id := range counterpartyIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx,
		conversationSelect+`
		 WHERE (m.author_id = ? AND mr.user_id IN (`+in+`))
		    OR (mr.user_id = ? AND m.author_id IN (`+in+`))
		 ORDER BY m.created_at`,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConversation(rows)
}

func (r *messagesRepo) ListReceivedSince(ctx context.Context, userID string, since time.Time) ([]domain.ConversationMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		conversationSelect+`
		 WHERE mr.user_id = ? AND m.created_at > ?
		 ORDER BY m.created_at`,
		userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectConversation(rows)
}

func collectConversation(rows *sql.Rows) ([]domain.ConversationMessage, error) {
	var out []domain.ConversationMessage
	for rows.Next() {
		var (
			m      domain.ConversationMessage
			parent sql.NullString
		)
		err := rows.Scan(&m.ID, &m.Subject, &m.Content, &parent, &m.CreatedAt,
			&m.Author, &m.Recipient)
		if err != nil {
			return nil, err
		}
		m.ParentID = parent.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
