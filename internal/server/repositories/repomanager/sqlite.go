package repomanager

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/bookmarks/internal/dbx"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/migrations"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories. Used for local
// runs and tests.
type SQLiteRepositoryManager struct {
	logger logging.Logger
}

func (m *SQLiteRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Bookmarks(db dbx.DBTX) bookmarks.Repository {
	return bookmarks.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetLogger(newGooseLogger(m.logger))
	goose.SetBaseFS(migrations.SQLite)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, "sqlite")
}

// NewSQLiteRepositoryManager returns a manager whose migrations report to
// logger; a nil logger keeps goose quiet.
func NewSQLiteRepositoryManager(db *sql.DB, logger logging.Logger) (RepositoryManager, error) {
	return &SQLiteRepositoryManager{logger: logger}, nil
}

// sqliteDSN turns a sqlite:// or file: DSN into one modernc.org/sqlite
// accepts, with foreign keys enforced and a busy timeout.
func sqliteDSN(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "sqlite://")

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func openSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", sqliteDSN(dsn))
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps shared
	// in-memory databases free of table-lock errors.
	db.SetMaxOpenConns(1)
	return db, nil
}
