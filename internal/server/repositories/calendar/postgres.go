package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/dbx"
	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, ev *models.CalendarEvent) (*models.CalendarEvent, error) {
	query :=
		`INSERT INTO calendar_events (family_id, created_by, title, description, starts_at, ends_at, color)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		ev.FamilyID, ev.CreatedBy, ev.Title, ev.Description, ev.StartsAt, ev.EndsAt, ev.Color).
		Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ev, nil
}

func (r *PostgresRepository) ListRange(ctx context.Context, familyID string, from, to time.Time) ([]models.CalendarEvent, error) {
	query :=
		`SELECT id, family_id, created_by, title, description, starts_at, ends_at, color, created_at
		 FROM calendar_events
		 WHERE family_id = $1 AND starts_at >= $2 AND starts_at < $3
		 ORDER BY starts_at
		 `

	rows, err := r.db.QueryContext(ctx, query, familyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.CalendarEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

const eventColumns = `id, family_id, created_by, title, description, starts_at, ends_at, color, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.CalendarEvent, error) {
	var (
		ev          models.CalendarEvent
		createdBy   sql.NullString
		description sql.NullString
		endsAt      sql.NullTime
	)
	if err := row.Scan(&ev.ID, &ev.FamilyID, &createdBy, &ev.Title, &description, &ev.StartsAt, &endsAt, &ev.Color, &ev.CreatedAt); err != nil {
		return nil, err
	}
	if createdBy.Valid {
		ev.CreatedBy = &createdBy.String
	}
	if description.Valid {
		ev.Description = &description.String
	}
	if endsAt.Valid {
		ev.EndsAt = &endsAt.Time
	}
	return &ev, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = $1`

	ev, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ev, nil
}

func (r *PostgresRepository) Update(ctx context.Context, ev *models.CalendarEvent) (*models.CalendarEvent, error) {
	query :=
		`UPDATE calendar_events
		 SET title = $2, description = $3, starts_at = $4, ends_at = $5, color = $6
		 WHERE id = $1
		 RETURNING ` + eventColumns

	updated, err := scanEvent(r.db.QueryRowContext(ctx, query,
		ev.ID, ev.Title, ev.Description, ev.StartsAt, ev.EndsAt, ev.Color))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
