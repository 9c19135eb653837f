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

// ErrBestReplyExists is returned when a topic already has a chosen best reply.
var ErrBestReplyExists = errors.New("this topic already has a best reply")

type ReplyService struct {
	Store store.Store
}

// Create posts a reply to an unlocked topic. Private-category topics
// require write access.
func (s *ReplyService) Create(ctx context.Context, actor domain.User, topicID, content string) (domain.Reply, error) {
	if len(content) < minTextLength || len(content) > maxTextLength {
		return domain.Reply{}, fmt.Errorf("%w: content must be between %d and %d characters",
			ErrValidation, minTextLength, maxTextLength)
	}

	topic, err := s.Store.Topics().GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Reply{}, ErrNotFound
		}
		return domain.Reply{}, fmt.Errorf("topic lookup: %w", err)
	}
	if topic.IsLocked {
		return domain.Reply{}, ErrLocked
	}

	if err := s.requireWriteAccess(ctx, actor, topic.CategoryID); err != nil {
		return domain.Reply{}, err
	}

	reply := domain.Reply{
		ID:        idx.New().String(),
		TopicID:   topicID,
		AuthorID:  actor.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.Store.Replies().CreateReply(ctx, reply); err != nil {
		return domain.Reply{}, fmt.Errorf("create reply: %w", err)
	}
	return reply, nil
}

// Edit rewrites a reply's content. Author-only.
func (s *ReplyService) Edit(ctx context.Context, actor domain.User, replyID, content string) (domain.Reply, error) {
	if len(content) < minTextLength || len(content) > maxTextLength {
		return domain.Reply{}, fmt.Errorf("%w: content must be between %d and %d characters",
			ErrValidation, minTextLength, maxTextLength)
	}

	reply, err := s.Store.Replies().GetReplyByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Reply{}, ErrNotFound
		}
		return domain.Reply{}, fmt.Errorf("reply lookup: %w", err)
	}
	if reply.AuthorID != actor.ID {
		return domain.Reply{}, ErrForbidden
	}

	if err := s.Store.Replies().UpdateReplyContent(ctx, replyID, content); err != nil {
		return domain.Reply{}, fmt.Errorf("update reply: %w", err)
	}

	reply.Content = content
	return reply, nil
}

// ChooseBest marks a reply as the topic's best answer. Only the topic's
// author may choose, and only once per topic.
func (s *ReplyService) ChooseBest(ctx context.Context, actor domain.User, topicID, replyID string) (domain.Reply, error) {
	topic, err := s.Store.Topics().GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Reply{}, ErrNotFound
		}
		return domain.Reply{}, fmt.Errorf("topic lookup: %w", err)
	}
	if topic.AuthorID != actor.ID {
		return domain.Reply{}, ErrForbidden
	}

	var chosen domain.Reply

	// The exists-check and the mark have to be atomic or two concurrent
	// calls could both win.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		hasBest, err := tx.Replies().HasBestReply(ctx, topicID)
		if err != nil {
			return fmt.Errorf("best reply check: %w", err)
		}
		if hasBest {
			return ErrBestReplyExists
		}

		reply, err := tx.Replies().GetReplyByID(ctx, replyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("reply lookup: %w", err)
		}
		if reply.TopicID != topicID {
			return ErrNotFound
		}

		if err := tx.Replies().MarkBestReply(ctx, replyID); err != nil {
			return fmt.Errorf("mark best reply: %w", err)
		}

		reply.IsBest = true
		chosen = reply
		return nil
	})
	if err != nil {
		return domain.Reply{}, err
	}

	return chosen, nil
}

// Vote records, changes or removes the actor's vote on a reply and returns
// the reply with updated tallies.
func (s *ReplyService) Vote(ctx context.Context, actor domain.User, replyID string, vote domain.Vote) (domain.Reply, error) {
	if !vote.Valid() {
		return domain.Reply{}, fmt.Errorf("%w: vote must be -1, 0 or 1", ErrValidation)
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Replies().GetReplyByID(ctx, replyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("reply lookup: %w", err)
		}

		if vote == domain.VoteRemove {
			err := tx.Votes().DeleteVote(ctx, replyID, actor.ID)
			if errors.Is(err, store.ErrNotFound) {
				// Removing a vote that was never cast is a no-op.
				return nil
			}
			return err
		}

		return tx.Votes().UpsertVote(ctx, replyID, actor.ID, vote)
	})
	if err != nil {
		return domain.Reply{}, err
	}

	return s.Store.Replies().GetReplyByID(ctx, replyID)
}

func (s *ReplyService) requireWriteAccess(ctx context.Context, actor domain.User, categoryID string) error {
	category, err := s.Store.Categories().GetCategoryByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("category lookup: %w", err)
	}
	if !category.IsPrivate() || actor.IsAdmin {
		return nil
	}

	access, err := s.Store.Categories().GetAccess(ctx, categoryID, actor.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if !access.WriteAccess {
		return ErrForbidden
	}
	return nil
}
