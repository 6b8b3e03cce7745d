package gallery

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

func (r *PostgresRepository) Create(ctx context.Context, item *models.GalleryItem) (*models.GalleryItem, error) {
	query :=
		`INSERT INTO gallery_items (family_id, uploaded_by, media_type, storage_key, caption)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, item.FamilyID, item.UploadedBy, item.MediaType, item.StorageKey, item.Caption).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) ListByFamily(ctx context.Context, familyID string) ([]models.GalleryItem, error) {
	query :=
		`SELECT id, family_id, uploaded_by, media_type, storage_key, caption, created_at
		 FROM gallery_items
		 WHERE family_id = $1
		 ORDER BY created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.GalleryItem{}
	for rows.Next() {
		var (
			it      models.GalleryItem
			caption sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.FamilyID, &it.UploadedBy, &it.MediaType, &it.StorageKey, &caption, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if caption.Valid {
			it.Caption = &caption.String
		}
		result = append(result, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.GalleryItem, error) {
	query :=
		`SELECT id, family_id, uploaded_by, media_type, storage_key, caption, created_at
		 FROM gallery_items
		 WHERE id = $1
		 `

	var (
		it      models.GalleryItem
		caption sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&it.ID, &it.FamilyID, &it.UploadedBy, &it.MediaType, &it.StorageKey, &caption, &it.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if caption.Valid {
		it.Caption = &caption.String
	}
	return &it, nil
}

// Delete returns common.ErrorNotFound when nothing was removed.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gallery_items WHERE id = $1`, id)
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
