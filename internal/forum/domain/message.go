package domain

import "time"

const DefaultMessageSubject = "No subject"

type Message struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"-"`
	Subject   string    `json:"subject"`
	Content   string    `json:"content"`
	ParentID  string    `json:"id_parent_message,omitempty"`
	CreatedAt time.Time `json:"created_on"`
}

// ConversationMessage is a message row resolved to usernames, as listed in
// the conversation views.
type ConversationMessage struct {
	Message
	Author    string `json:"author"`
	Recipient string `json:"recipient,omitempty"`
}
