package chats

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, chat *models.Chat) (*models.Chat, error)
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	ListByFamily(ctx context.Context, familyID string) ([]models.Chat, error)
	Delete(ctx context.Context, id string) error
}
