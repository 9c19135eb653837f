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

const maxSubjectLength = 45

type MessageService struct {
	Store store.Store
}

// ConversationThread groups a user's messages by counterparty.
type ConversationThread struct {
	With     string                       `json:"with"`
	Messages []domain.ConversationMessage `json:"messages"`
}

// SubjectThread groups the messages of one conversation by subject.
type SubjectThread struct {
	Subject  string                       `json:"subject"`
	Messages []domain.ConversationMessage `json:"messages"`
}

// Send delivers a message to a set of recipients. The message row and all
// recipient links are written in one transaction so a partial send never
// becomes visible. A named parent that does not exist is silently dropped.
func (s *MessageService) Send(ctx context.Context, actor domain.User, recipients []string, subject, content, parentID string) (domain.Message, error) {
	if content == "" {
		return domain.Message{}, fmt.Errorf("%w: message content must not be empty", ErrValidation)
	}
	if subject == "" {
		subject = domain.DefaultMessageSubject
	}
	if len(subject) > maxSubjectLength {
		return domain.Message{}, fmt.Errorf("%w: subject must be at most %d characters",
			ErrValidation, maxSubjectLength)
	}
	if len(recipients) == 0 {
		return domain.Message{}, fmt.Errorf("%w: at least one recipient is required", ErrValidation)
	}

	recipientIDs := make([]string, 0, len(recipients))
	seen := make(map[string]struct{}, len(recipients))
	for _, username := range recipients {
		if _, dup := seen[username]; dup {
			continue
		}
		seen[username] = struct{}{}

		user, err := s.Store.Users().GetUserByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Message{}, ErrUnknownUser
			}
			return domain.Message{}, fmt.Errorf("recipient lookup: %w", err)
		}
		recipientIDs = append(recipientIDs, user.ID)
	}

	if parentID != "" {
		exists, err := s.Store.Messages().MessageExists(ctx, parentID)
		if err != nil {
			return domain.Message{}, fmt.Errorf("parent lookup: %w", err)
		}
		if !exists {
			parentID = ""
		}
	}

	message := domain.Message{
		ID:        idx.New().String(),
		AuthorID:  actor.ID,
		Subject:   subject,
		Content:   content,
		ParentID:  parentID,
		CreatedAt: time.Now().UTC(),
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Messages().CreateMessage(ctx, message); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		for _, userID := range recipientIDs {
			if err := tx.Messages().AddRecipient(ctx, message.ID, userID); err != nil {
				return fmt.Errorf("add recipient: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Message{}, err
	}

	return message, nil
}

// Conversations lists the actor's messages grouped by counterparty.
func (s *MessageService) Conversations(ctx context.Context, actor domain.User, sort store.TopicSort, page store.Page) ([]ConversationThread, error) {
	messages, err := s.Store.Messages().ListConversations(ctx, actor.ID, sort, page)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	byParty := make(map[string]*ConversationThread)
	var order []string
	for _, m := range messages {
		party := m.Recipient
		if party == actor.Username {
			party = m.Author
		}

		thread, ok := byParty[party]
		if !ok {
			thread = &ConversationThread{With: party}
			byParty[party] = thread
			order = append(order, party)
		}
		thread.Messages = append(thread.Messages, m)
	}

	out := make([]ConversationThread, 0, len(order))
	for _, party := range order {
		out = append(out, *byParty[party])
	}
	return out, nil
}

// ConversationsWith returns the actor's exchanges with the named users,
// split into per-subject threads.
func (s *MessageService) ConversationsWith(ctx context.Context, actor domain.User, usernames []string) ([]SubjectThread, error) {
	counterpartyIDs := make([]string, 0, len(usernames))
	for _, username := range usernames {
		user, err := s.Store.Users().GetUserByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrUnknownUser
			}
			return nil, fmt.Errorf("counterparty lookup: %w", err)
		}
		counterpartyIDs = append(counterpartyIDs, user.ID)
	}

	messages, err := s.Store.Messages().ListConversationWith(ctx, actor.ID, counterpartyIDs)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}

	bySubject := make(map[string]*SubjectThread)
	var order []string
	for _, m := range messages {
		thread, ok := bySubject[m.Subject]
		if !ok {
			thread = &SubjectThread{Subject: m.Subject}
			bySubject[m.Subject] = thread
			order = append(order, m.Subject)
		}
		thread.Messages = append(thread.Messages, m)
	}

	out := make([]SubjectThread, 0, len(order))
	for _, subject := range order {
		out = append(out, *bySubject[subject])
	}
	return out, nil
}

// ChatSince returns the messages the actor received after the given
// instant, oldest first. Feed for chat-style polling clients.
func (s *MessageService) ChatSince(ctx context.Context, actor domain.User, since time.Time) ([]domain.ConversationMessage, error) {
	return s.Store.Messages().ListReceivedSince(ctx, actor.ID, since)
}
