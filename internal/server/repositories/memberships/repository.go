// Package memberships stores who belongs to which family and in what role.
// It is the membership authority consulted before any room join.
package memberships

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type Repository interface {
	// Create returns common.ErrorAlreadyExists if the user already belongs
	// to the family.
	Create(ctx context.Context, m *models.Membership) (*models.Membership, error)
	// Find returns common.ErrorNotFound when the user is not a member.
	Find(ctx context.Context, familyID, userID string) (*models.Membership, error)
	ListMembers(ctx context.Context, familyID string) ([]models.Member, error)
	Delete(ctx context.Context, familyID, userID string) error
}
