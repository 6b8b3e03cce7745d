package chats

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

func (r *PostgresRepository) Create(ctx context.Context, chat *models.Chat) (*models.Chat, error) {
	query :=
		`INSERT INTO chats (family_id, name, created_by)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	if err := r.db.QueryRowContext(ctx, query, chat.FamilyID, chat.Name, chat.CreatedBy).Scan(&chat.ID, &chat.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return chat, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	query :=
		`SELECT id, family_id, name, created_by, created_at FROM chats
		 WHERE id = $1
		 `

	c := &models.Chat{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.FamilyID, &c.Name, &c.CreatedBy, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByFamily(ctx context.Context, familyID string) ([]models.Chat, error) {
	query :=
		`SELECT id, family_id, name, created_by, created_at FROM chats
		 WHERE family_id = $1
		 ORDER BY created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Chat{}
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(&c.ID, &c.FamilyID, &c.Name, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM chats
		 WHERE id = $1
		 `
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
