package calendar

import (
	"context"
	"time"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, ev *models.CalendarEvent) (*models.CalendarEvent, error)
	// ListRange returns events of familyID starting in [from, to), ordered by start.
	ListRange(ctx context.Context, familyID string, from, to time.Time) ([]models.CalendarEvent, error)
	GetByID(ctx context.Context, id string) (*models.CalendarEvent, error)
	// Update overwrites the editable fields of ev.ID and returns the stored row.
	Update(ctx context.Context, ev *models.CalendarEvent) (*models.CalendarEvent, error)
	Delete(ctx context.Context, id string) error
}
