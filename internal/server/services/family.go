package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/dbx"
	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/dmitrijs2005/lentik/internal/server/config"
	"github.com/dmitrijs2005/lentik/internal/server/events"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/repomanager"
)

const (
	maxInviteHours   = 720
	inviteTokenBytes = 32
)

// FamilyService manages families, their members and invites.
type FamilyService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         Broadcaster
	inviteTTL   time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewFamilyService(db *sql.DB, m repomanager.RepositoryManager, hub Broadcaster, cfg *config.Config, logger logging.Logger) *FamilyService {
	return &FamilyService{
		db:          db,
		repomanager: m,
		hub:         hub,
		inviteTTL:   cfg.InviteTTL,
		logger:      logger.With("module", "families"),
		now:         time.Now,
	}
}

// CreateFamily creates a family owned by userID.
func (s *FamilyService) CreateFamily(ctx context.Context, userID, name string) (*models.Family, error) {
	name = strings.TrimSpace(name)
	if err := checkLength("name", name, 1, 120); err != nil {
		return nil, err
	}

	var family *models.Family
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		family, err = s.repomanager.Families(tx).Create(ctx, name)
		if err != nil {
			return fmt.Errorf("error creating family: %w", err)
		}
		_, err = s.repomanager.Memberships(tx).Create(ctx, &models.Membership{
			FamilyID: family.ID,
			UserID:   userID,
			Role:     models.RoleOwner,
		})
		if err != nil {
			return fmt.Errorf("error creating membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "family created", "family_id", family.ID, "owner_id", userID)
	return family, nil
}

// FindMembership returns userID's membership in familyID or
// common.ErrorNotFound.
func (s *FamilyService) FindMembership(ctx context.Context, familyID, userID string) (*models.Membership, error) {
	return s.repomanager.Memberships(s.db).Find(ctx, familyID, userID)
}

// CreateInvite lets the owner of familyID mint an invite valid for hours
// (0 selects the configured default).
func (s *FamilyService) CreateInvite(ctx context.Context, userID, familyID string, hours int) (*models.Invite, error) {
	if hours < 0 || hours > maxInviteHours {
		return nil, fmt.Errorf("%w: expires_in_hours must be 1..%d", common.ErrorValidation, maxInviteHours)
	}
	ttl := time.Duration(hours) * time.Hour
	if hours == 0 {
		ttl = s.inviteTTL
	}

	if _, err := s.repomanager.Families(s.db).GetByID(ctx, familyID); err != nil {
		return nil, err
	}
	if _, err := requireOwner(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}

	token, err := common.MakeRandURLSafeString(inviteTokenBytes)
	if err != nil {
		return nil, common.ErrorInternal
	}
	inv, err := s.repomanager.Invites(s.db).Create(ctx, &models.Invite{
		FamilyID:  familyID,
		Token:     token,
		ExpiresAt: s.now().Add(ttl),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating invite: %w", err)
	}
	return inv, nil
}

// AcceptInvite adds an existing user to the invite's family and consumes the
// invite. It returns the family id.
func (s *FamilyService) AcceptInvite(ctx context.Context, userID, token string) (string, error) {
	invite, err := s.repomanager.Invites(s.db).GetByToken(ctx, token)
	if err != nil {
		return "", err
	}
	if s.now().After(invite.ExpiresAt) {
		return "", common.ErrInviteExpired
	}

	_, err = s.repomanager.Memberships(s.db).Find(ctx, invite.FamilyID, userID)
	if err == nil {
		return "", common.ErrorAlreadyExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("error finding membership: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Memberships(tx).Create(ctx, &models.Membership{
			FamilyID: invite.FamilyID,
			UserID:   userID,
			Role:     models.RoleMember,
		}); err != nil {
			return err
		}
		return s.repomanager.Invites(tx).Delete(ctx, invite.ID)
	})
	if err != nil {
		return "", err
	}

	name := userName(ctx, s.repomanager.Users(s.db), userID)
	s.hub.BroadcastToFamily(ctx, invite.FamilyID, events.MemberJoined{UserID: userID, DisplayName: name})
	return invite.FamilyID, nil
}

// ListMembers returns the members of familyID; the caller must be one of them.
func (s *FamilyService) ListMembers(ctx context.Context, userID, familyID string) ([]models.Member, error) {
	if _, err := requireMember(ctx, s.repomanager.Memberships(s.db), familyID, userID); err != nil {
		return nil, err
	}
	return s.repomanager.Memberships(s.db).ListMembers(ctx, familyID)
}

// KickMember removes memberID from familyID. Only the owner may do it, and
// not to themselves.
func (s *FamilyService) KickMember(ctx context.Context, userID, familyID, memberID string) error {
	repo := s.repomanager.Memberships(s.db)
	if _, err := requireOwner(ctx, repo, familyID, userID); err != nil {
		return err
	}
	if memberID == userID {
		return fmt.Errorf("%w: owner cannot remove themselves", common.ErrorValidation)
	}

	name := userName(ctx, s.repomanager.Users(s.db), memberID)
	if err := repo.Delete(ctx, familyID, memberID); err != nil {
		return err
	}

	s.hub.BroadcastToFamily(ctx, familyID, events.MemberKicked{UserID: memberID, DisplayName: name})
	s.hub.DisconnectUser(ctx, familyID, memberID)
	s.logger.Info(ctx, "member removed", "family_id", familyID, "user_id", memberID)
	return nil
}
