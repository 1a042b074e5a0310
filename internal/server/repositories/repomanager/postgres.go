package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bookmarks/internal/dbx"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/migrations"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repositories.
type PostgresRepositoryManager struct {
	logger logging.Logger
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Bookmarks(db dbx.DBTX) bookmarks.Repository {
	return bookmarks.NewPostgresRepository(db)
}

// RunMigrations applies the embedded postgres migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(newGooseLogger(m.logger))
	goose.SetBaseFS(migrations.Postgres)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "postgres")
}

// NewPostgresRepositoryManager returns a manager whose migrations report to
// logger; a nil logger keeps goose quiet.
func NewPostgresRepositoryManager(db *sql.DB, logger logging.Logger) (RepositoryManager, error) {
	return &PostgresRepositoryManager{logger: logger}, nil
}
