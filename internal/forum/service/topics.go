package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/store"
	"github.com/parleyhq/parley/pkg/idx"
)

const (
	minTitleLength = 2
	maxTitleLength = 200
	minTextLength  = 10
	maxTextLength  = 1000
)

// searchStopWords are dropped from search queries before matching.
var searchStopWords = map[string]struct{}{
	"and": {}, "but": {}, "from": {}, "only": {}, "top": {},
}

type TopicService struct {
	Store store.Store
}

// SearchOptions controls the topic search listing.
type SearchOptions struct {
	Query          string
	IncludeReplies bool
	Sort           store.TopicSort
	Page           store.Page
}

// SearchResult carries topics, optionally with their replies attached.
type SearchResult struct {
	Topics []domain.TopicView `json:"topics"`
}

// Search lists topics visible to the viewer whose title or text matches
// every non-stop-word search term. An empty query lists everything visible.
func (s *TopicService) Search(ctx context.Context, viewer *domain.User, opts SearchOptions) (SearchResult, error) {
	terms := filterStopWords(opts.Query)

	userID := ""
	adminView := false
	if viewer != nil {
		userID = viewer.ID
		adminView = viewer.IsAdmin
	}

	topics, err := s.Store.Topics().SearchTopics(ctx, terms, userID, adminView, opts.Sort, opts.Page)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search topics: %w", err)
	}

	result := SearchResult{Topics: make([]domain.TopicView, 0, len(topics))}
	for _, t := range topics {
		view := domain.TopicView{Topic: t}
		if opts.IncludeReplies {
			view.Replies, err = s.Store.Replies().ListRepliesByTopic(ctx, t.ID)
			if err != nil {
				return SearchResult{}, fmt.Errorf("list replies: %w", err)
			}
		}
		result.Topics = append(result.Topics, view)
	}
	return result, nil
}

// Get returns a topic with its replies, enforcing private-category read
// access.
func (s *TopicService) Get(ctx context.Context, viewer *domain.User, topicID string) (domain.TopicView, error) {
	topic, err := s.Store.Topics().GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TopicView{}, ErrNotFound
		}
		return domain.TopicView{}, fmt.Errorf("topic lookup: %w", err)
	}

	if err := s.requireReadAccess(ctx, viewer, topic.CategoryID); err != nil {
		return domain.TopicView{}, err
	}

	replies, err := s.Store.Replies().ListRepliesByTopic(ctx, topicID)
	if err != nil {
		return domain.TopicView{}, fmt.Errorf("list replies: %w", err)
	}

	return domain.TopicView{Topic: topic, Replies: replies}, nil
}

// Count returns the number of topics in a category.
func (s *TopicService) Count(ctx context.Context, categoryID string) (int, error) {
	return s.Store.Topics().CountTopicsByCategory(ctx, categoryID)
}

// Create adds a topic to a category. The category must exist and be
// unlocked, and in private categories the author needs write access.
func (s *TopicService) Create(ctx context.Context, actor domain.User, title, text, categoryID string) (domain.Topic, error) {
	if len(title) < minTitleLength || len(title) > maxTitleLength {
		return domain.Topic{}, fmt.Errorf("%w: title must be between %d and %d characters",
			ErrValidation, minTitleLength, maxTitleLength)
	}
	if len(text) < minTextLength || len(text) > maxTextLength {
		return domain.Topic{}, fmt.Errorf("%w: text must be between %d and %d characters",
			ErrValidation, minTextLength, maxTextLength)
	}

	category, err := s.Store.Categories().GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Topic{}, ErrNotFound
		}
		return domain.Topic{}, fmt.Errorf("category lookup: %w", err)
	}
	if category.IsLocked() {
		return domain.Topic{}, ErrLocked
	}

	if err := s.requireWriteAccess(ctx, actor, category); err != nil {
		return domain.Topic{}, err
	}

	topic := domain.Topic{
		ID:         idx.New().String(),
		Title:      title,
		Text:       text,
		CategoryID: categoryID,
		AuthorID:   actor.ID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Store.Topics().CreateTopic(ctx, topic); err != nil {
		return domain.Topic{}, fmt.Errorf("create topic: %w", err)
	}
	return topic, nil
}

// Edit rewrites a topic's title and/or text. Only the author or an admin
// may edit, and locked topics reject edits. Empty fields keep their current
// value.
func (s *TopicService) Edit(ctx context.Context, actor domain.User, topicID, newTitle, newText string) (domain.Topic, error) {
	topic, err := s.Store.Topics().GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Topic{}, ErrNotFound
		}
		return domain.Topic{}, fmt.Errorf("topic lookup: %w", err)
	}

	if topic.AuthorID != actor.ID && !actor.IsAdmin {
		return domain.Topic{}, ErrForbidden
	}
	if topic.IsLocked {
		return domain.Topic{}, ErrLocked
	}

	if newTitle == "" {
		newTitle = topic.Title
	}
	if newText == "" {
		newText = topic.Text
	}
	if len(newTitle) < minTitleLength || len(newTitle) > maxTitleLength {
		return domain.Topic{}, fmt.Errorf("%w: title must be between %d and %d characters",
			ErrValidation, minTitleLength, maxTitleLength)
	}
	if len(newText) < minTextLength || len(newText) > maxTextLength {
		return domain.Topic{}, fmt.Errorf("%w: text must be between %d and %d characters",
			ErrValidation, minTextLength, maxTextLength)
	}

	if err := s.Store.Topics().UpdateTopic(ctx, topicID, newTitle, newText); err != nil {
		return domain.Topic{}, fmt.Errorf("update topic: %w", err)
	}

	topic.Title, topic.Text = newTitle, newText
	return topic, nil
}

// Lock closes a topic for new replies. Admin-only. Reports whether the
// topic was already locked so the handler can answer idempotent calls
// differently.
func (s *TopicService) Lock(ctx context.Context, actor domain.User, topicID string) (alreadyLocked bool, err error) {
	if !actor.IsAdmin {
		return false, ErrForbidden
	}

	alreadyLocked, err = s.Store.Topics().LockTopic(ctx, topicID)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrNotFound
	}
	return alreadyLocked, err
}

func (s *TopicService) requireReadAccess(ctx context.Context, viewer *domain.User, categoryID string) error {
	category, err := s.Store.Categories().GetCategoryByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("category lookup: %w", err)
	}
	if !category.IsPrivate() {
		return nil
	}
	if viewer == nil {
		return ErrForbidden
	}
	if viewer.IsAdmin {
		return nil
	}

	_, err = s.Store.Categories().GetAccess(ctx, categoryID, viewer.ID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrForbidden
	}
	return err
}

func (s *TopicService) requireWriteAccess(ctx context.Context, actor domain.User, category domain.Category) error {
	if !category.IsPrivate() || actor.IsAdmin {
		return nil
	}

	access, err := s.Store.Categories().GetAccess(ctx, category.ID, actor.ID)
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

// filterStopWords splits a query into unique terms and drops the stop words.
func filterStopWords(query string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, word := range strings.Fields(query) {
		if _, stop := searchStopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		terms = append(terms, word)
	}
	return terms
}
