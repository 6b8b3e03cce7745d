package posts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/lentik/internal/dbx"
	"github.com/dmitrijs2005/lentik/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// encodeMedia stores an empty list as NULL.
func encodeMedia(urls []string) (*string, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Post) (*models.Post, error) {
	media, err := encodeMedia(p.MediaURLs)
	if err != nil {
		return nil, fmt.Errorf("media encoding error: %w", err)
	}

	query :=
		`INSERT INTO posts (channel_id, author_id, text, media_urls)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at
		 `

	err = r.db.QueryRowContext(ctx, query, p.ChannelID, p.AuthorID, p.Text, media).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListByChannel(ctx context.Context, channelID string, limit, offset int) ([]models.Post, error) {
	query :=
		`SELECT id, channel_id, author_id, text, media_urls, created_at FROM posts
		 WHERE channel_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, channelID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []models.Post{}
	for rows.Next() {
		var (
			p      models.Post
			author sql.NullString
			media  []byte
		)
		if err := rows.Scan(&p.ID, &p.ChannelID, &author, &p.Text, &media, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if author.Valid {
			p.AuthorID = &author.String
		}
		if len(media) > 0 {
			if err := json.Unmarshal(media, &p.MediaURLs); err != nil {
				return nil, fmt.Errorf("media decoding error: %w", err)
			}
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
