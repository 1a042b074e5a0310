package bookmarks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/dbx"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pgColumns = `id, user_id, title, link, description, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, b *models.Bookmark) (*models.Bookmark, error) {
	query :=
		`INSERT INTO bookmarks (user_id, title, link, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, b.UserID, b.Title, b.Link, dbx.Nullable(b.Description)).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return b, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+pgColumns+` FROM bookmarks WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := []models.Bookmark{}
	for rows.Next() {
		var (
			b    models.Bookmark
			desc sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Link, &desc, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		b.Description = dbx.StringPtr(desc)
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return items, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Bookmark, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+pgColumns+` FROM bookmarks WHERE id = $1`, id)
	return scanPostgres(row)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, patch models.BookmarkPatch) (*models.Bookmark, error) {
	query :=
		`UPDATE bookmarks
		 SET title = COALESCE($2, title),
		     link = COALESCE($3, link),
		     description = COALESCE($4, description),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING ` + pgColumns

	row := r.db.QueryRowContext(ctx, query, id,
		dbx.Nullable(patch.Title), dbx.Nullable(patch.Link), dbx.Nullable(patch.Description))
	return scanPostgres(row)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return checkAffected(res)
}

func scanPostgres(row *sql.Row) (*models.Bookmark, error) {
	var (
		b    models.Bookmark
		desc sql.NullString
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Link, &desc, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	b.Description = dbx.StringPtr(desc)
	return &b, nil
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
