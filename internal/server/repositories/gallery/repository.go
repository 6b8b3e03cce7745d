package gallery

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.GalleryItem) (*models.GalleryItem, error)
	// ListByFamily returns items newest first.
	ListByFamily(ctx context.Context, familyID string) ([]models.GalleryItem, error)
	GetByID(ctx context.Context, id string) (*models.GalleryItem, error)
	Delete(ctx context.Context, id string) error
}
