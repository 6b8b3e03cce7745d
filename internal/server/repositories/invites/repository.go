package invites

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, inv *models.Invite) (*models.Invite, error)
	GetByToken(ctx context.Context, token string) (*models.Invite, error)
	Delete(ctx context.Context, id string) error
}
