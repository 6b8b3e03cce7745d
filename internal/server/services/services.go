// Package services contains server-side business logic. Every mutation is
// committed first and only then announced through a Broadcaster, so realtime
// subscribers never observe state that was rolled back.
package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/server/events"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/memberships"
	"github.com/dmitrijs2005/lentik/internal/server/repositories/users"
)

// Broadcaster fans an event out to the live connections of one room and
// drops the connections of users who left a family. *realtime.Hub
// implements it.
type Broadcaster interface {
	BroadcastToChat(ctx context.Context, chatID string, ev events.Event)
	BroadcastToFamily(ctx context.Context, familyID string, ev events.Event)
	DisconnectUser(ctx context.Context, familyID, userID string)
}

// requireMember returns the caller's membership or common.ErrorForbidden.
func requireMember(ctx context.Context, repo memberships.Repository, familyID, userID string) (*models.Membership, error) {
	m, err := repo.Find(ctx, familyID, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorForbidden
		}
		return nil, fmt.Errorf("error finding membership: %w", err)
	}
	return m, nil
}

// requireOwner is requireMember restricted to the owner role.
func requireOwner(ctx context.Context, repo memberships.Repository, familyID, userID string) (*models.Membership, error) {
	m, err := requireMember(ctx, repo, familyID, userID)
	if err != nil {
		return nil, err
	}
	if m.Role != models.RoleOwner {
		return nil, common.ErrorForbidden
	}
	return m, nil
}

// userName resolves a display name for event payloads. Lookup failures fall
// back to an empty name; the event is still worth sending.
func userName(ctx context.Context, repo users.Repository, userID string) string {
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.UserName
}

// checkLength reports common.ErrorValidation unless s holds min..max runes.
func checkLength(field, s string, min, max int) error {
	n := utf8.RuneCountInString(s)
	if n < min || n > max {
		return fmt.Errorf("%w: %s must be %d..%d characters", common.ErrorValidation, field, min, max)
	}
	return nil
}
