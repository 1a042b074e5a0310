package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc", want: "abc"},
		{name: "case insensitive scheme", header: "bearer abc", want: "abc"},
		{name: "extra spaces", header: "  Bearer   abc  ", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "blank", header: "   ", wantErr: true},
		{name: "no token", header: "Bearer", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "too many parts", header: "Bearer abc def", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bearerToken(tt.header)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newGuardRouter(users UserAPI) *Router {
	return NewRouter(Deps{Logger: logging.Discard(), Users: users})
}

func TestRequireAuth(t *testing.T) {
	users := &fakeUsers{tokens: map[string]*models.User{"good": {ID: 7, Email: "a@b.c"}}}
	r := newGuardRouter(users)

	var seen Identity
	h := r.requireAuth(func(w http.ResponseWriter, req *http.Request) {
		seen, _ = identityFromContext(req.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "malformed header", header: "Token good", want: http.StatusUnauthorized},
		{name: "unknown token", header: "Bearer bad", want: http.StatusUnauthorized},
		{name: "valid token", header: "Bearer good", want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set(common.AuthorizationHeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			h(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, Identity{UserID: 7, Email: "a@b.c"}, seen)
}

func TestRequireAuth_StoreFailureIs500(t *testing.T) {
	r := newGuardRouter(&fakeUsers{authErr: errors.Join(common.ErrorInternal, errors.New("db down"))})
	h := r.requireAuth(func(w http.ResponseWriter, req *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set(common.AuthorizationHeaderName, "Bearer x")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWithRequestID(t *testing.T) {
	var fromCtx string
	h := withRequestID(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fromCtx = logging.RequestIDFromContext(req.Context())
	}))

	t.Run("echoes caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(requestIDHeader, "req-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "req-1", rec.Header().Get(requestIDHeader))
		assert.Equal(t, "req-1", fromCtx)
	})

	t.Run("generates when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		id := rec.Header().Get(requestIDHeader)
		assert.Len(t, id, 36)
		assert.Equal(t, id, fromCtx)
	})
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := cors(next)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/bookmarks", nil)
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	})

	t.Run("simple request passes through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/bookmarks", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestStatusRecorder_DefaultsTo200(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, err := rec.Write([]byte("hi"))
	require.NoError(t, err)
	rec.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, rec.status)
	assert.Equal(t, 2, rec.bytes)
}
