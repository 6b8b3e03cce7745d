// Package events defines every realtime payload the server can push.
//
// Event is a closed set: only types in this package implement it. Each
// encodes to a single JSON object {"type": <tag>, ...fields}.
package events

import (
	"time"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

// Tags carried in the "type" field.
const (
	TypeNewMessage           = "new_message"
	TypeMessageEdited        = "message_edited"
	TypeMessageDeleted       = "message_deleted"
	TypeMemberJoined         = "member_joined"
	TypeMemberKicked         = "member_kicked"
	TypeMention              = "mention"
	TypeCalendarEventCreated = "calendar_event_created"
	TypeGalleryItemAdded     = "gallery_item_added"
)

type Event interface {
	Type() string
	sealed()
}

// Message is the full message shape sent with new_message.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	AuthorID  *string   `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	ReplyToID *string   `json:"reply_to_id"`
	Edited    bool      `json:"edited"`
}

func MessageFromModel(m *models.Message) Message {
	return Message{
		ID:        m.ID,
		ChatID:    m.ChatID,
		AuthorID:  m.AuthorID,
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		ReplyToID: m.ReplyToID,
		Edited:    m.Edited,
	}
}

type NewMessage struct {
	Message Message `json:"message"`
}

// EditedMessage carries only what an edit changes.
type EditedMessage struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Edited bool   `json:"edited"`
}

type MessageEdited struct {
	Message EditedMessage `json:"message"`
}

type MessageDeleted struct {
	MessageID string `json:"message_id"`
}

type MemberJoined struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type MemberKicked struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// Mention goes to the family room when a message names users with @handle.
type Mention struct {
	Mentions  []string `json:"mentions"`
	From      string   `json:"from"`
	Text      string   `json:"text"`
	ChatID    string   `json:"chat_id"`
	MessageID string   `json:"message_id"`
}

type CalendarEventCreated struct {
	EventID     string    `json:"event_id"`
	Title       string    `json:"title"`
	StartsAt    time.Time `json:"starts_at"`
	CreatorName string    `json:"creator_name"`
}

type GalleryItemAdded struct {
	ItemID       string  `json:"item_id"`
	MediaType    string  `json:"media_type"`
	Caption      *string `json:"caption"`
	UploaderName string  `json:"uploader_name"`
}

func (NewMessage) Type() string           { return TypeNewMessage }
func (MessageEdited) Type() string        { return TypeMessageEdited }
func (MessageDeleted) Type() string       { return TypeMessageDeleted }
func (MemberJoined) Type() string         { return TypeMemberJoined }
func (MemberKicked) Type() string         { return TypeMemberKicked }
func (Mention) Type() string              { return TypeMention }
func (CalendarEventCreated) Type() string { return TypeCalendarEventCreated }
func (GalleryItemAdded) Type() string     { return TypeGalleryItemAdded }

func (NewMessage) sealed()           {}
func (MessageEdited) sealed()        {}
func (MessageDeleted) sealed()       {}
func (MemberJoined) sealed()         {}
func (MemberKicked) sealed()         {}
func (Mention) sealed()              {}
func (CalendarEventCreated) sealed() {}
func (GalleryItemAdded) sealed()     {}
