package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/dmitrijs2005/lentik/internal/server/events"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/repomanager"
)

const (
	DefaultMessagePage = 50
	MaxMessagePage     = 200
	maxMessageLength   = 4000
	maxChatNameLength  = 120
)

// ChatService manages chats and their messages and announces every message
// mutation on the chat's room.
type ChatService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         Broadcaster
	logger      logging.Logger
}

func NewChatService(db *sql.DB, m repomanager.RepositoryManager, hub Broadcaster, logger logging.Logger) *ChatService {
	return &ChatService{
		db:          db,
		repomanager: m,
		hub:         hub,
		logger:      logger.With("module", "chats"),
	}
}

// GetChat returns a chat by id regardless of the caller.
func (s *ChatService) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	return s.repomanager.Chats(s.db).GetByID(ctx, chatID)
}

// familyChat returns chatID only if it belongs to familyID.
func (s *ChatService) familyChat(ctx context.Context, familyID, chatID string) (*models.Chat, error) {
	chat, err := s.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.FamilyID != familyID {
		return nil, common.ErrorNotFound
	}
	return chat, nil
}

func (s *ChatService) ListChats(ctx context.Context, userID, familyID string) ([]models.Chat, error) {
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Chats(s.db).ListByFamily(ctx, familyID)
}

// CreateChat is owner-only.
func (s *ChatService) CreateChat(ctx context.Context, userID, familyID, name string) (*models.Chat, error) {
	name = strings.TrimSpace(name)
	if err := checkLength("name", name, 1, maxChatNameLength); err != nil {
		return nil, err
	}
	if _, err := requireOwner(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	chat, err := s.repomanager.Chats(s.db).Create(ctx, &models.Chat{FamilyID: familyID, Name: name, CreatedBy: userID})
	if err != nil {
		return nil, fmt.Errorf("error creating chat: %w", err)
	}
	return chat, nil
}

// DeleteChat is owner-only. Connections still joined to the chat room stay
// open; they simply receive nothing further.
func (s *ChatService) DeleteChat(ctx context.Context, userID, familyID, chatID string) error {
	if _, err := requireOwner(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return err
	}
	if _, err := s.familyChat(ctx, familyID, chatID); err != nil {
		return err
	}
	return s.repomanager.Chats(s.db).Delete(ctx, chatID)
}

// ListMessages pages backwards from beforeID (or the newest message when
// empty) and returns the page oldest first. limit <= 0 selects the default;
// larger values are capped.
func (s *ChatService) ListMessages(ctx context.Context, userID, familyID, chatID, beforeID string, limit int) ([]models.Message, error) {
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	if _, err := s.familyChat(ctx, familyID, chatID); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultMessagePage
	case limit > MaxMessagePage:
		limit = MaxMessagePage
	}
	return s.repomanager.Messages(s.db).List(ctx, chatID, beforeID, limit)
}

// SendMessage stores a message, then broadcasts new_message on the chat room
// and, if the text mentions anyone, one mention event on the family room.
func (s *ChatService) SendMessage(ctx context.Context, userID, familyID, chatID, text string, replyToID *string) (*models.Message, error) {
	if err := checkLength("text", text, 1, maxMessageLength); err != nil {
		return nil, err
	}
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	if _, err := s.familyChat(ctx, familyID, chatID); err != nil {
		return nil, err
	}

	author := userID
	msg, err := s.repomanager.Messages(s.db).Create(ctx, &models.Message{
		ChatID:    chatID,
		AuthorID:  &author,
		Text:      text,
		ReplyToID: replyToID,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating message: %w", err)
	}

	s.hub.BroadcastToChat(ctx, chatID, events.NewMessage{Message: events.MessageFromModel(msg)})

	if mentions := ExtractMentions(msg.Text); len(mentions) > 0 {
		s.hub.BroadcastToFamily(ctx, familyID, events.Mention{
			Mentions:  mentions,
			From:      userName(ctx, s.repomanager.Users(s.db), userID),
			Text:      msg.Text,
			ChatID:    chatID,
			MessageID: msg.ID,
		})
	}
	return msg, nil
}

// EditMessage replaces the text of the caller's own message.
func (s *ChatService) EditMessage(ctx context.Context, userID, familyID, chatID, messageID, text string) (*models.Message, error) {
	if err := checkLength("text", text, 1, maxMessageLength); err != nil {
		return nil, err
	}
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	if _, err := s.familyChat(ctx, familyID, chatID); err != nil {
		return nil, err
	}
	repo := s.repomanager.Messages(s.db)
	msg, err := repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.ChatID != chatID {
		return nil, common.ErrorNotFound
	}
	if msg.AuthorID == nil || *msg.AuthorID != userID {
		return nil, common.ErrorForbidden
	}

	updated, err := repo.UpdateText(ctx, messageID, text)
	if err != nil {
		return nil, err
	}
	s.hub.BroadcastToChat(ctx, chatID, events.MessageEdited{Message: events.EditedMessage{
		ID:     updated.ID,
		Text:   updated.Text,
		Edited: updated.Edited,
	}})
	return updated, nil
}

// DeleteMessage removes a message; its author and the family owner may do so.
func (s *ChatService) DeleteMessage(ctx context.Context, userID, familyID, chatID, messageID string) error {
	m, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID)
	if err != nil {
		return err
	}
	if _, err := s.familyChat(ctx, familyID, chatID); err != nil {
		return err
	}
	repo := s.repomanager.Messages(s.db)
	msg, err := repo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ChatID != chatID {
		return common.ErrorNotFound
	}
	isAuthor := msg.AuthorID != nil && *msg.AuthorID == userID
	if !isAuthor && m.Role != models.RoleOwner {
		return common.ErrorForbidden
	}
	if err := repo.Delete(ctx, messageID); err != nil {
		return err
	}
	s.hub.BroadcastToChat(ctx, chatID, events.MessageDeleted{MessageID: messageID})
	return nil
}
