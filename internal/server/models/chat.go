package models

import "time"

type Chat struct {
	ID        string    `json:"id"`
	FamilyID  string    `json:"family_id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a chat message. AuthorID and ReplyToID are nil when the author
// was removed or the message is not a reply.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	AuthorID  *string   `json:"author_id"`
	Text      string    `json:"text"`
	Edited    bool      `json:"edited"`
	ReplyToID *string   `json:"reply_to_id"`
	CreatedAt time.Time `json:"created_at"`
}
