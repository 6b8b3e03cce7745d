package memberships

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

func (r *PostgresRepository) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	query :=
		`INSERT INTO memberships (family_id, user_id, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	if err := r.db.QueryRowContext(ctx, query, m.FamilyID, m.UserID, string(m.Role)).Scan(&m.ID, &m.CreatedAt); err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Find(ctx context.Context, familyID, userID string) (*models.Membership, error) {
	query :=
		`SELECT id, family_id, user_id, role, created_at FROM memberships
		 WHERE family_id = $1 AND user_id = $2
		 `

	m := &models.Membership{}
	var role string
	err := r.db.QueryRowContext(ctx, query, familyID, userID).Scan(&m.ID, &m.FamilyID, &m.UserID, &role, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	m.Role = models.Role(role)
	return m, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, familyID string) ([]models.Member, error) {
	query :=
		`SELECT u.id, u.username, m.role, m.created_at
		 FROM memberships m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.family_id = $1
		 ORDER BY m.created_at
		 `

	rows, err := r.db.QueryContext(ctx, query, familyID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var (
			m    models.Member
			role string
		)
		if err := rows.Scan(&m.UserID, &m.UserName, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		m.Role = models.Role(role)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return members, nil
}

// Delete returns common.ErrorNotFound when nothing was removed.
func (r *PostgresRepository) Delete(ctx context.Context, familyID, userID string) error {
	query :=
		`DELETE FROM memberships
		 WHERE family_id = $1 AND user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, familyID, userID)
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
