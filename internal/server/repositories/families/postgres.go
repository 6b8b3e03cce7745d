package families

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

func (r *PostgresRepository) Create(ctx context.Context, name string) (*models.Family, error) {
	query :=
		`INSERT INTO families (name)
		 VALUES ($1)
		 RETURNING id, name, created_at
		 `

	f := &models.Family{}
	if err := r.db.QueryRowContext(ctx, query, name).Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Family, error) {
	query :=
		`SELECT id, name, created_at FROM families
		 WHERE id = $1
		 `

	f := &models.Family{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}
