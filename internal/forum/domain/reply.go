package domain

import "time"

type Reply struct {
	ID        string    `json:"id"`
	TopicID   string    `json:"topic_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	IsBest    bool      `json:"is_best"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
	CreatedAt time.Time `json:"created_on"`
}

// Vote is a user's stance on a reply. Zero removes a previously cast vote.
type Vote int

const (
	VoteDown   Vote = -1
	VoteRemove Vote = 0
	VoteUp     Vote = 1
)

// Valid reports whether v is one of the three recognised values.
func (v Vote) Valid() bool { return v >= VoteDown && v <= VoteUp }
