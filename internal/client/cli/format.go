package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// wireEvent holds every field any event type may carry.
type wireEvent struct {
	Type    string `json:"type"`
	Message *struct {
		ID       string  `json:"id"`
		AuthorID *string `json:"author_id"`
		Text     string  `json:"text"`
	} `json:"message"`
	MessageID    string    `json:"message_id"`
	UserID       string    `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	Mentions     []string  `json:"mentions"`
	From         string    `json:"from"`
	Text         string    `json:"text"`
	Title        string    `json:"title"`
	StartsAt     time.Time `json:"starts_at"`
	CreatorName  string    `json:"creator_name"`
	MediaType    string    `json:"media_type"`
	Caption      *string   `json:"caption"`
	UploaderName string    `json:"uploader_name"`
}

// FormatEvent renders one realtime payload as a single line. Payloads it
// does not understand are printed as received.
func FormatEvent(data []byte) string {
	var ev wireEvent
	if err := json.Unmarshal(data, &ev); err != nil || ev.Type == "" {
		return strings.TrimSpace(string(data))
	}

	switch ev.Type {
	case "new_message":
		if ev.Message == nil {
			break
		}
		author := "someone"
		if ev.Message.AuthorID != nil {
			author = *ev.Message.AuthorID
		}
		return fmt.Sprintf("[message] %s: %s", author, ev.Message.Text)
	case "message_edited":
		if ev.Message == nil {
			break
		}
		return fmt.Sprintf("[edited] %s: %s", ev.Message.ID, ev.Message.Text)
	case "message_deleted":
		return fmt.Sprintf("[deleted] %s", ev.MessageID)
	case "member_joined":
		return fmt.Sprintf("[joined] %s", ev.DisplayName)
	case "member_kicked":
		return fmt.Sprintf("[kicked] %s", ev.DisplayName)
	case "mention":
		return fmt.Sprintf("[mention] %s -> @%s: %s", ev.From, strings.Join(ev.Mentions, " @"), ev.Text)
	case "calendar_event_created":
		return fmt.Sprintf("[calendar] %s by %s at %s", ev.Title, ev.CreatorName, ev.StartsAt.Format(time.RFC3339))
	case "gallery_item_added":
		line := fmt.Sprintf("[gallery] %s by %s", ev.MediaType, ev.UploaderName)
		if ev.Caption != nil && *ev.Caption != "" {
			line += ": " + *ev.Caption
		}
		return line
	}
	return strings.TrimSpace(string(data))
}
