package channels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

type scanner interface {
	Scan(dest ...any) error
}

func scanChannel(s scanner) (*models.Channel, error) {
	var (
		ch          models.Channel
		description sql.NullString
		createdBy   sql.NullString
	)
	if err := s.Scan(&ch.ID, &ch.FamilyID, &ch.Name, &description, &createdBy, &ch.CreatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		ch.Description = &description.String
	}
	if createdBy.Valid {
		ch.CreatedBy = &createdBy.String
	}
	return &ch, nil
}

func (r *PostgresRepository) Create(ctx context.Context, ch *models.Channel) (*models.Channel, error) {
	query :=
		`INSERT INTO channels (family_id, name, description, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, ch.FamilyID, ch.Name, ch.Description, ch.CreatedBy).
		Scan(&ch.ID, &ch.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ch, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	query :=
		`SELECT id, family_id, name, description, created_by, created_at FROM channels
		 WHERE id = $1
		 `

	ch, err := scanChannel(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ch, nil
}

func (r *PostgresRepository) ListByFamily(ctx context.Context, familyID string) ([]models.Channel, error) {
	query :=
		`SELECT id, family_id, name, description, created_by, created_at FROM channels
		 WHERE family_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Channel{}
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
