package services

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookmarks/internal/cryptox"
	"github.com/dmitrijs2005/bookmarks/internal/dbx"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/auth"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var testHashParams = cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

type env struct {
	db       *sql.DB
	rm       repomanager.RepositoryManager
	issuer   *auth.Issuer
	users    *UserService
	bookmark *BookmarkService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, rm, err := repomanager.Open(context.Background(), "file:svc_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	issuer, err := auth.NewIssuer([]byte("test-secret"), time.Minute)
	require.NoError(t, err)

	log := logging.Discard()
	return &env{
		db:       db,
		rm:       rm,
		issuer:   issuer,
		users:    NewUserService(db, rm, cryptox.NewHasher(testHashParams, 2), issuer, log),
		bookmark: NewBookmarkService(db, rm, log),
	}
}

func (e *env) signUp(t *testing.T, email string) int64 {
	t.Helper()
	tok, err := e.users.SignUp(context.Background(), Credentials{Email: email, Password: "123"})
	require.NoError(t, err)
	claims, err := e.issuer.Verify(tok)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	return id
}

// stubManager hands out whatever repositories a test sets and fails the test
// when a repository it did not expect is requested.
type stubManager struct {
	t         *testing.T
	users     users.Repository
	bookmarks bookmarks.Repository
}

func (m *stubManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *stubManager) Users(dbx.DBTX) users.Repository {
	if m.users == nil {
		m.t.Fatalf("unexpected users repository access")
	}
	return m.users
}

func (m *stubManager) Bookmarks(dbx.DBTX) bookmarks.Repository {
	if m.bookmarks == nil {
		m.t.Fatalf("unexpected bookmarks repository access")
	}
	return m.bookmarks
}

type fakeUsers struct {
	createErr error
	getErr    error
	got       *models.User
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = 1
	return u, nil
}

func (f *fakeUsers) GetByEmail(context.Context, string) (*models.User, error) {
	return f.got, f.getErr
}

func (f *fakeUsers) GetByID(context.Context, int64) (*models.User, error) {
	return f.got, f.getErr
}

func (f *fakeUsers) Update(context.Context, int64, models.UserPatch) (*models.User, error) {
	return f.got, f.getErr
}

type fakeBookmarks struct {
	items []models.Bookmark
	err   error
}

func (f *fakeBookmarks) Create(context.Context, *models.Bookmark) (*models.Bookmark, error) {
	return nil, f.err
}

func (f *fakeBookmarks) ListByUser(context.Context, int64) ([]models.Bookmark, error) {
	return f.items, f.err
}

func (f *fakeBookmarks) GetByID(context.Context, int64) (*models.Bookmark, error) {
	return nil, f.err
}

func (f *fakeBookmarks) Update(context.Context, int64, models.BookmarkPatch) (*models.Bookmark, error) {
	return nil, f.err
}

func (f *fakeBookmarks) Delete(context.Context, int64) error { return f.err }

func strPtr(s string) *string { return &s }
