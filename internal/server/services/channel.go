package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/repomanager"
)

const (
	DefaultPostPageSize = 20
	MaxPostPageSize     = 100
)

// ChannelService runs owner-authored announcement feeds. Channel activity is
// read by polling, so nothing here is broadcast.
type ChannelService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewChannelService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ChannelService {
	return &ChannelService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "channels"),
	}
}

func (s *ChannelService) ListChannels(ctx context.Context, userID, familyID string) ([]models.Channel, error) {
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Channels(s.db).ListByFamily(ctx, familyID)
}

// CreateChannel is restricted to the family owner.
func (s *ChannelService) CreateChannel(ctx context.Context, userID, familyID, name string, description *string) (*models.Channel, error) {
	name = strings.TrimSpace(name)
	if err := checkLength("name", name, 1, 120); err != nil {
		return nil, err
	}
	if description != nil {
		if err := checkLength("description", *description, 0, 500); err != nil {
			return nil, err
		}
	}
	if _, err := requireOwner(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}

	creator := userID
	ch, err := s.repomanager.Channels(s.db).Create(ctx, &models.Channel{
		FamilyID:    familyID,
		Name:        name,
		Description: description,
		CreatedBy:   &creator,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating channel: %w", err)
	}
	s.logger.Info(ctx, "channel created", "family_id", familyID, "channel_id", ch.ID)
	return ch, nil
}

// channelInFamily hides channels of other families behind common.ErrorNotFound.
func (s *ChannelService) channelInFamily(ctx context.Context, familyID, channelID string) (*models.Channel, error) {
	ch, err := s.repomanager.Channels(s.db).GetByID(ctx, channelID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading channel: %w", err)
	}
	if ch.FamilyID != familyID {
		return nil, common.ErrorNotFound
	}
	return ch, nil
}

// ListPosts returns a page of posts newest first. A zero limit means
// DefaultPostPageSize.
func (s *ChannelService) ListPosts(ctx context.Context, userID, familyID, channelID string, limit, offset int) ([]models.Post, error) {
	if limit == 0 {
		limit = DefaultPostPageSize
	}
	if limit < 1 || limit > MaxPostPageSize {
		return nil, fmt.Errorf("%w: limit must be 1..%d", common.ErrorValidation, MaxPostPageSize)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", common.ErrorValidation)
	}
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	if _, err := s.channelInFamily(ctx, familyID, channelID); err != nil {
		return nil, err
	}
	return s.repomanager.Posts(s.db).ListByChannel(ctx, channelID, limit, offset)
}

// CreatePost is restricted to the family owner.
func (s *ChannelService) CreatePost(ctx context.Context, userID, familyID, channelID, text string, mediaURLs []string) (*models.Post, error) {
	if err := checkLength("text", text, 1, 10000); err != nil {
		return nil, err
	}
	if _, err := requireOwner(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	if _, err := s.channelInFamily(ctx, familyID, channelID); err != nil {
		return nil, err
	}

	author := userID
	p, err := s.repomanager.Posts(s.db).Create(ctx, &models.Post{
		ChannelID: channelID,
		AuthorID:  &author,
		Text:      text,
		MediaURLs: mediaURLs,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}
	if len(p.MediaURLs) == 0 {
		p.MediaURLs = nil
	}
	return p, nil
}
