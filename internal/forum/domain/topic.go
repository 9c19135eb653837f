package domain

import "time"

type Topic struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	CategoryID string    `json:"category_id"`
	AuthorID   string    `json:"author_id"`
	IsLocked   bool      `json:"is_locked"`
	CreatedAt  time.Time `json:"created_on"`
}

// TopicView is a topic with its replies attached, as returned by the
// single-topic endpoint and the search endpoint when replies are included.
type TopicView struct {
	Topic
	Replies []Reply `json:"replies,omitempty"`
}
