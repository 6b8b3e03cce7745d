package chats

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lentik/internal/common"
	"github.com/dmitrijs2005/lentik/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+chats\s*\(family_id,\s*name,\s*created_by\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`).
		WithArgs("f1", "General", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("c1", time.Now()))

	c, err := repo.Create(context.Background(), &models.Chat{FamilyID: "f1", Name: "General", CreatedBy: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "c1", c.ID)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*family_id,\s*name,\s*created_by,\s*created_at\s+FROM\s+chats\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "family_id", "name", "created_by", "created_at"}).
			AddRow("c1", "f1", "General", "u1", time.Now()))
	mock.ExpectQuery(q).WithArgs("c404").WillReturnError(sql.ErrNoRows)

	c, err := repo.GetByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "f1", c.FamilyID)

	_, err = repo.GetByID(context.Background(), "c404")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByFamily(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+chats\s+WHERE\s+family_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at`).
		WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "family_id", "name", "created_by", "created_at"}).
			AddRow("c1", "f1", "General", "u1", time.Now()).
			AddRow("c2", "f1", "Trips", "u1", time.Now()))

	got, err := repo.ListByFamily(context.Background(), "f1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Trips", got[1].Name)
}

func TestListByFamily_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+chats`).WithArgs("f2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "family_id", "name", "created_by", "created_at"}))

	got, err := repo.ListByFamily(context.Background(), "f2")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDelete_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^DELETE\s+FROM\s+chats\s+WHERE\s+id\s*=\s*\$1\s*$`).
		WithArgs("c1").
		WillReturnError(errors.New("locked"))

	require.ErrorContains(t, repo.Delete(context.Background(), "c1"), "db error: locked")
}
