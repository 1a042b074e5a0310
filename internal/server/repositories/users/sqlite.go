package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/dbx"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteRepository stores timestamps as INTEGER unix milliseconds.
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	now := r.now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, hash, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		user.Email, user.Hash, dbx.ToMillis(now), dbx.ToMillis(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &common.ConstraintViolationError{Field: "email", Err: err}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.ID = id
	user.CreatedAt = dbx.FromMillis(dbx.ToMillis(now))
	user.UpdatedAt = user.CreatedAt
	return user, nil
}

const sqliteSelectUser = `SELECT id, email, hash, first_name, last_name, created_at, updated_at FROM users`

func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, sqliteSelectUser+` WHERE email = ?`, email), true)
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, sqliteSelectUser+` WHERE id = ?`, id), true)
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET first_name = COALESCE(?, first_name),
		     last_name = COALESCE(?, last_name),
		     updated_at = ?
		 WHERE id = ?`,
		dbx.Nullable(patch.FirstName), dbx.Nullable(patch.LastName), dbx.ToMillis(r.now()), id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return nil, common.ErrorNotFound
	}

	return r.GetByID(ctx, id)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
