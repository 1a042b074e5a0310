package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/cryptox"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/auth"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookmarks/internal/server/services"
	"github.com/stretchr/testify/require"
)

var testHashParams = cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// newTestAPI builds the full stack over a private in-memory SQLite database.
func newTestAPI(t *testing.T, limit int) *httptest.Server {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, rm, err := repomanager.Open(context.Background(), "file:http_"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	issuer, err := auth.NewIssuer([]byte("test-secret"), time.Minute)
	require.NoError(t, err)

	log := logging.Discard()
	r := NewRouter(Deps{
		Logger:         log,
		Users:          services.NewUserService(db, rm, cryptox.NewHasher(testHashParams, 2), issuer, log),
		Bookmarks:      services.NewBookmarkService(db, rm, log),
		DBHealth:       db.PingContext,
		AuthRateLimit:  limit,
		AuthRateWindow: time.Minute,
	})
	t.Cleanup(func() { _ = r.Close() })

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)
	return srv
}

type apiResponse struct {
	status int
	header http.Header
	body   []byte
}

func (r apiResponse) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, dst), "body: %s", r.body)
}

func (r apiResponse) errorBody(t *testing.T) errorBody {
	t.Helper()
	var e errorBody
	r.decode(t, &e)
	return e
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, payload any) apiResponse {
	t.Helper()

	var body *bytes.Reader
	switch p := payload.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(p))
	default:
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return apiResponse{status: resp.StatusCode, header: resp.Header, body: buf.Bytes()}
}

func signup(t *testing.T, srv *httptest.Server, email, password string) string {
	t.Helper()
	resp := call(t, srv, http.MethodPost, "/auth/signup", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusCreated, resp.status, "body: %s", resp.body)
	var tok tokenResponse
	resp.decode(t, &tok)
	require.NotEmpty(t, tok.AccessToken)
	return tok.AccessToken
}

// fakeUsers answers Authenticate from a fixed token table.
type fakeUsers struct {
	tokens  map[string]*models.User
	authErr error
}

func (f *fakeUsers) SignUp(context.Context, services.Credentials) (string, error) { return "", nil }
func (f *fakeUsers) SignIn(context.Context, services.Credentials) (string, error) { return "", nil }

func (f *fakeUsers) Authenticate(_ context.Context, token string) (*models.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	if u, ok := f.tokens[token]; ok {
		return u, nil
	}
	return nil, common.ErrUnauthenticated
}

func (f *fakeUsers) Me(_ context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (f *fakeUsers) EditUser(_ context.Context, id int64, _ models.UserPatch) (*models.User, error) {
	return &models.User{ID: id}, nil
}
