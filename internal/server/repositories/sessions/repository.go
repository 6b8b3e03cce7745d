// Package sessions declares the server-side repository contract for
// credential session records.
package sessions

import (
	"context"

	"github.com/dmitrijs2005/lentik/internal/server/models"
)

// Repository stores hashed session credentials.
type Repository interface {
	// Create persists s and fills in its ID.
	Create(ctx context.Context, s *models.Session) error

	// FindByTokenHash returns common.ErrorNotFound when no record carries hash.
	FindByTokenHash(ctx context.Context, hash string) (*models.Session, error)

	// Delete removes a session by id. Deleting an absent row is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteByTokenHash removes the session carrying hash, if any.
	DeleteByTokenHash(ctx context.Context, hash string) error
}
