package models

import "time"

// Channel is an owner-run announcement feed inside a family.
type Channel struct {
	ID          string    `json:"id"`
	FamilyID    string    `json:"family_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   *string   `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Post is one entry of a channel. MediaURLs is nil when the post has none.
type Post struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	AuthorID  *string   `json:"author_id"`
	Text      string    `json:"text"`
	MediaURLs []string  `json:"media_urls"`
	CreatedAt time.Time `json:"created_at"`
}
