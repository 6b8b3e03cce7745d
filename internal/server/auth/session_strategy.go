package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/logging"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/sessions"
)

// sessionTokenSize is the number of random bytes behind a session credential.
const sessionTokenSize = 32

// SessionStrategy stores a hash of every issued credential. Expired records
// are deleted the first time they are presented.
type SessionStrategy struct {
	repo   sessions.Repository
	ttl    time.Duration
	logger logging.Logger
	now    func() time.Time
}

func NewSessionStrategy(repo sessions.Repository, ttl time.Duration, logger logging.Logger) *SessionStrategy {
	return &SessionStrategy{repo: repo, ttl: ttl, logger: logger, now: time.Now}
}

func (s *SessionStrategy) Issue(ctx context.Context, userID string) (string, error) {
	raw, err := common.MakeRandURLSafeString(sessionTokenSize)
	if err != nil {
		return "", err
	}

	now := s.now()
	rec := &models.Session{
		UserID:    userID,
		TokenHash: HashToken(raw),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return raw, nil
}

func (s *SessionStrategy) Verify(ctx context.Context, credential string) (string, error) {
	if credential == "" {
		return "", common.ErrInvalidToken
	}

	rec, err := s.repo.FindByTokenHash(ctx, HashToken(credential))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidToken
		}
		return "", err
	}

	if !rec.ExpiresAt.After(s.now()) {
		// concurrent verifiers may race here; deleting twice is harmless
		if err := s.repo.Delete(ctx, rec.ID); err != nil {
			s.logger.Warn(ctx, "expired session cleanup failed", "session_id", rec.ID, "error", err)
		}
		return "", common.ErrTokenExpired
	}

	return rec.UserID, nil
}

func (s *SessionStrategy) Revoke(ctx context.Context, credential string) error {
	if credential == "" {
		return nil
	}
	return s.repo.DeleteByTokenHash(ctx, HashToken(credential))
}
