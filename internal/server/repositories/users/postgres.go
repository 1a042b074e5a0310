package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/dbx"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (email, hash)
		 VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, user.Email, user.Hash).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, &common.ConstraintViolationError{Field: "email", Err: err}
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const pgSelectUser = `SELECT id, email, hash, first_name, last_name, created_at, updated_at FROM users`

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, pgSelectUser+` WHERE email = $1`, email), false)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, pgSelectUser+` WHERE id = $1`, id), false)
}

func (r *PostgresRepository) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	query :=
		`UPDATE users
		 SET first_name = COALESCE($2, first_name),
		     last_name = COALESCE($3, last_name),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING id, email, hash, first_name, last_name, created_at, updated_at`

	row := r.db.QueryRowContext(ctx, query, id, dbx.Nullable(patch.FirstName), dbx.Nullable(patch.LastName))
	return scanUser(row, false)
}

// scanUser reads one user row. millis selects the SQLite timestamp layout.
func scanUser(row *sql.Row, millis bool) (*models.User, error) {
	var (
		u                   models.User
		first, last         sql.NullString
		created, updated    sql.NullTime
		createdMs, updateMs int64
		err                 error
	)

	if millis {
		err = row.Scan(&u.ID, &u.Email, &u.Hash, &first, &last, &createdMs, &updateMs)
	} else {
		err = row.Scan(&u.ID, &u.Email, &u.Hash, &first, &last, &created, &updated)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	u.FirstName = dbx.StringPtr(first)
	u.LastName = dbx.StringPtr(last)
	if millis {
		u.CreatedAt = dbx.FromMillis(createdMs)
		u.UpdatedAt = dbx.FromMillis(updateMs)
	} else {
		u.CreatedAt = created.Time
		u.UpdatedAt = updated.Time
	}

	return &u, nil
}
