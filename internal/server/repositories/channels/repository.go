package channels

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ch *models.Channel) (*models.Channel, error)
	GetByID(ctx context.Context, id string) (*models.Channel, error)
	// ListByFamily returns channels in creation order.
	ListByFamily(ctx context.Context, familyID string) ([]models.Channel, error)
}
