package families

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, name string) (*models.Family, error)
	GetByID(ctx context.Context, id string) (*models.Family, error)
}
