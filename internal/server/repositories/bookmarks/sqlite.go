package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/dbx"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
)

type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

const sqliteColumns = `id, user_id, title, link, description, created_at, updated_at`

func (r *SQLiteRepository) Create(ctx context.Context, b *models.Bookmark) (*models.Bookmark, error) {
	now := dbx.ToMillis(r.now())

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO bookmarks (user_id, title, link, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Title, b.Link, dbx.Nullable(b.Description), now, now)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	b.ID = id
	b.CreatedAt = dbx.FromMillis(now)
	b.UpdatedAt = b.CreatedAt
	return b, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]models.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM bookmarks WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := []models.Bookmark{}
	for rows.Next() {
		b, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Bookmark, error) {
	b, err := scanSQLite(r.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM bookmarks WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, patch models.BookmarkPatch) (*models.Bookmark, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookmarks
		 SET title = COALESCE(?, title),
		     link = COALESCE(?, link),
		     description = COALESCE(?, description),
		     updated_at = ?
		 WHERE id = ?`,
		dbx.Nullable(patch.Title), dbx.Nullable(patch.Link), dbx.Nullable(patch.Description),
		dbx.ToMillis(r.now()), id)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSQLite(s scanner) (*models.Bookmark, error) {
	var (
		b                  models.Bookmark
		desc               sql.NullString
		created, updatedAt int64
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.Title, &b.Link, &desc, &created, &updatedAt); err != nil {
		return nil, err
	}
	b.Description = dbx.StringPtr(desc)
	b.CreatedAt = dbx.FromMillis(created)
	b.UpdatedAt = dbx.FromMillis(updatedAt)
	return &b, nil
}
