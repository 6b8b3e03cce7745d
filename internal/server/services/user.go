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
	"github.com/dmitrijs2005/lentik/internal/server/auth"
	"github.com/dmitrijs2005/lentik/internal/server/config"
	"github.com/dmitrijs2005/lentik/internal/server/events"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/repomanager"
)

// maxUserNameSuffix bounds the _1, _2, ... search for a free username.
const maxUserNameSuffix = 1000

// AuthResult is what a successful login or invite registration hands back.
type AuthResult struct {
	User       *models.User
	FamilyID   string
	Credential string
}

// UserService provides authentication-related operations:
// - Login: check a PIN and issue a credential
// - Authenticate: resolve a credential to its user
// - Logout: revoke a credential where the strategy allows it
// - RegisterFromInvite: create a user and a membership from an invite
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	credentials auth.CredentialVerifier
	pins        *auth.PinHasher
	hub         Broadcaster
	logger      logging.Logger
	now         func() time.Time
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, credentials auth.CredentialVerifier,
	hub Broadcaster, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		credentials: credentials,
		pins:        auth.NewPinHasher(cfg.BcryptCost),
		hub:         hub,
		logger:      logger.With("module", "users"),
		now:         time.Now,
	}
}

// Login verifies a username/PIN pair. Unknown users and wrong PINs are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, pin string) (*AuthResult, error) {
	if err := auth.ValidatePin(pin); err != nil {
		return nil, err
	}
	user, err := s.repomanager.Users(s.db).GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	if !s.pins.Check(user.PinHash, pin) {
		return nil, common.ErrorUnauthorized
	}

	credential, err := s.credentials.Issue(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "credential issue failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	return &AuthResult{User: user, Credential: credential}, nil
}

// Authenticate resolves credential to a stored user. Any failure is
// common.ErrorUnauthorized except storage errors.
func (s *UserService) Authenticate(ctx context.Context, credential string) (*models.User, error) {
	userID, err := s.credentials.Verify(ctx, credential)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", common.ErrorUnauthorized, err)
		}
		s.logger.Error(ctx, "credential verification failed", "error", err)
		return nil, common.ErrorInternal
	}
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// Verify is Authenticate reduced to the user id. The WebSocket handler uses
// it so a credential whose user no longer exists is rejected on both paths.
func (s *UserService) Verify(ctx context.Context, credential string) (string, error) {
	user, err := s.Authenticate(ctx, credential)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// Logout revokes credential. An empty credential is a no-op.
func (s *UserService) Logout(ctx context.Context, credential string) error {
	if credential == "" {
		return nil
	}
	if err := s.credentials.Revoke(ctx, credential); err != nil {
		s.logger.Error(ctx, "credential revoke failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// RegisterFromInvite creates a user named after displayName (suffixed _1, _2,
// ... until free), makes them a member of the invite's family and consumes the
// invite, all in one transaction. member_joined goes out after commit.
func (s *UserService) RegisterFromInvite(ctx context.Context, token, displayName, pin string) (*AuthResult, error) {
	base := strings.TrimSpace(displayName)
	if err := checkLength("display_name", base, 1, 100); err != nil {
		return nil, err
	}
	if err := auth.ValidatePin(pin); err != nil {
		return nil, err
	}

	invite, err := s.repomanager.Invites(s.db).GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.now().After(invite.ExpiresAt) {
		return nil, common.ErrInviteExpired
	}

	hash, err := s.pins.Hash(pin)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var user *models.User
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		user, err = s.createUniqueUser(ctx, tx, base, hash)
		if err != nil {
			return err
		}
		if _, err := s.repomanager.Memberships(tx).Create(ctx, &models.Membership{
			FamilyID: invite.FamilyID,
			UserID:   user.ID,
			Role:     models.RoleMember,
		}); err != nil {
			return fmt.Errorf("error creating membership: %w", err)
		}
		if err := s.repomanager.Invites(tx).Delete(ctx, invite.ID); err != nil {
			return fmt.Errorf("error deleting invite: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	s.hub.BroadcastToFamily(ctx, invite.FamilyID, events.MemberJoined{UserID: user.ID, DisplayName: user.UserName})
	s.logger.Info(ctx, "user registered from invite", "user_id", user.ID, "family_id", invite.FamilyID)

	credential, err := s.credentials.Issue(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "credential issue failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	return &AuthResult{User: user, FamilyID: invite.FamilyID, Credential: credential}, nil
}

func (s *UserService) createUniqueUser(ctx context.Context, tx dbx.DBTX, base, pinHash string) (*models.User, error) {
	repo := s.repomanager.Users(tx)
	candidate := base
	for i := 1; i <= maxUserNameSuffix; i++ {
		_, err := repo.GetByUserName(ctx, candidate)
		if errors.Is(err, common.ErrorNotFound) {
			// A concurrent registration can still win the name; the failed
			// insert aborts the transaction, so it is reported, not retried.
			u, err := repo.Create(ctx, &models.User{UserName: candidate, PinHash: pinHash})
			if err != nil {
				return nil, fmt.Errorf("error creating user: %w", err)
			}
			return u, nil
		}
		if err != nil {
			return nil, fmt.Errorf("error searching user: %w", err)
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	return nil, common.ErrorAlreadyExists
}
