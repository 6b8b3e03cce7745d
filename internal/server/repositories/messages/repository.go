package messages

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetByID(ctx context.Context, id string) (*models.Message, error)
	// List returns the newest limit messages of chatID that are older than
	// beforeID (when non-empty), ordered oldest first.
	List(ctx context.Context, chatID, beforeID string, limit int) ([]models.Message, error)
	UpdateText(ctx context.Context, id, text string) (*models.Message, error)
	Delete(ctx context.Context, id string) error
}
