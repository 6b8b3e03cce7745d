package posts

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Post) (*models.Post, error)
	// ListByChannel returns a page of posts, newest first.
	ListByChannel(ctx context.Context, channelID string, limit, offset int) ([]models.Post, error)
}
