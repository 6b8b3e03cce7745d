package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

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

const columns = `id, chat_id, author_id, text, edited, reply_to_id, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(s scanner) (*models.Message, error) {
	var (
		m       models.Message
		author  sql.NullString
		replyTo sql.NullString
	)
	if err := s.Scan(&m.ID, &m.ChatID, &author, &m.Text, &m.Edited, &replyTo, &m.CreatedAt); err != nil {
		return nil, err
	}
	if author.Valid {
		m.AuthorID = &author.String
	}
	if replyTo.Valid {
		m.ReplyToID = &replyTo.String
	}
	return &m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query :=
		`INSERT INTO messages (chat_id, author_id, text, reply_to_id)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, edited, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, msg.ChatID, msg.AuthorID, msg.Text, msg.ReplyToID).
		Scan(&msg.ID, &msg.Edited, &msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msg, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT ` + columns + ` FROM messages WHERE id = $1`

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) List(ctx context.Context, chatID, beforeID string, limit int) ([]models.Message, error) {
	var (
		rows *sql.Rows
		err  error
	)

	var anchor sql.NullTime
	if beforeID != "" {
		query := `SELECT created_at FROM messages WHERE id = $1 AND chat_id = $2`
		err = r.db.QueryRowContext(ctx, query, beforeID, chatID).Scan(&anchor)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("db error: %w", err)
		}
	}

	// an unknown anchor pages from the newest message
	if !anchor.Valid {
		query := `SELECT ` + columns + ` FROM messages
		 WHERE chat_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`
		rows, err = r.db.QueryContext(ctx, query, chatID, limit)
	} else {
		query := `SELECT ` + columns + ` FROM messages
		 WHERE chat_id = $1
		   AND created_at < $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT $3`
		rows, err = r.db.QueryContext(ctx, query, chatID, anchor.Time, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	slices.Reverse(result)
	return result, nil
}

func (r *PostgresRepository) UpdateText(ctx context.Context, id, text string) (*models.Message, error) {
	query := `UPDATE messages SET text = $2, edited = TRUE
		 WHERE id = $1
		 RETURNING ` + columns

	m, err := scanMessage(r.db.QueryRowContext(ctx, query, id, text))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query :=
		`DELETE FROM messages
		 WHERE id = $1
		 `
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
