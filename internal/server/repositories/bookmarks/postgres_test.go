package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
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

var cols = []string{"id", "user_id", "title", "link", "description", "created_at", "updated_at"}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+bookmarks\s*\(user_id,\s*title,\s*link,\s*description\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at,\s*updated_at$`).
		WithArgs(int64(1), "Go", "https://go.dev", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(10), now, now))

	got, err := repo.Create(context.Background(), &models.Bookmark{UserID: 1, Title: "Go", Link: "https://go.dev"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.ID)
	assert.Equal(t, int64(1), got.UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+bookmarks`).WillReturnError(errors.New("fk violation"))

	_, err := repo.Create(context.Background(), &models.Bookmark{UserID: 1, Title: "t", Link: "l"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*fk violation`, err.Error())
}

func TestListByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+bookmarks\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+id$`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), int64(2), "a", "la", nil, now, now).
			AddRow(int64(3), int64(2), "b", "lb", "desc", now, now))

	got, err := repo.ListByUser(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].Description)
	require.NotNil(t, got[1].Description)
	assert.Equal(t, "desc", *got[1].Description)
}

func TestListByUser_EmptyIsNotNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+bookmarks\s+WHERE\s+user_id`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.ListByUser(context.Background(), 2)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+bookmarks\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 7)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdate_PartialPatch(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()
	title := "new"

	mock.ExpectQuery(`(?s)^UPDATE\s+bookmarks\s+SET\s+title\s*=\s*COALESCE\(\$2,\s*title\),.*WHERE\s+id\s*=\s*\$1\s+RETURNING`).
		WithArgs(int64(4), "new", nil, nil).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(4), int64(2), "new", "l", nil, now, now))

	got, err := repo.Update(context.Background(), 4, models.BookmarkPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE\s+FROM\s+bookmarks\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 4))

	mock.ExpectExec(`^DELETE\s+FROM\s+bookmarks`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 5), common.ErrorNotFound)

	mock.ExpectExec(`^DELETE\s+FROM\s+bookmarks`).
		WithArgs(int64(6)).
		WillReturnError(errors.New("db down"))
	err := repo.Delete(context.Background(), 6)
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
