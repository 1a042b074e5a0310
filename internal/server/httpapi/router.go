// Package httpapi is the HTTP surface of the bookmarks server: routing,
// request decoding, the bearer-token guard and error-to-status mapping.
package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/dmitrijs2005/bookmarks/internal/server/services"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type UserAPI interface {
	SignUp(ctx context.Context, c services.Credentials) (string, error)
	SignIn(ctx context.Context, c services.Credentials) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
	EditUser(ctx context.Context, userID int64, patch models.UserPatch) (*models.User, error)
}

type BookmarkAPI interface {
	Create(ctx context.Context, userID int64, in services.NewBookmark) (*models.Bookmark, error)
	List(ctx context.Context, userID int64) ([]models.Bookmark, error)
	Get(ctx context.Context, userID, id int64) (*models.Bookmark, error)
	Edit(ctx context.Context, userID, id int64, patch models.BookmarkPatch) (*models.Bookmark, error)
	Delete(ctx context.Context, userID, id int64) error
}

type ExportAPI interface {
	Export(ctx context.Context, userID int64) (*models.Export, error)
}

// Deps are the collaborators of the Router. Exports and DBHealth may be nil.
type Deps struct {
	Logger    logging.Logger
	Users     UserAPI
	Bookmarks BookmarkAPI
	Exports   ExportAPI
	Limiter   RateLimiter
	DBHealth  func(context.Context) error

	// AuthRateLimit requests per AuthRateWindow per client on /auth/*; 0 disables.
	AuthRateLimit  int
	AuthRateWindow time.Duration

	// TracerProvider for request spans; nil uses the global provider.
	TracerProvider trace.TracerProvider
}

const healthCheckTimeout = 2 * time.Second

// Router wires HTTP endpoints to services.
type Router struct {
	mux        *http.ServeMux
	logger     logging.Logger
	users      UserAPI
	bookmarks  BookmarkAPI
	exports    ExportAPI
	limiter    RateLimiter
	dbHealth   func(context.Context) error
	authLimit  int
	authWindow time.Duration
	metrics    *metrics
	tracer     trace.TracerProvider
}

func NewRouter(d Deps) *Router {
	r := &Router{
		mux:        http.NewServeMux(),
		logger:     d.Logger.With("module", "http"),
		users:      d.Users,
		bookmarks:  d.Bookmarks,
		exports:    d.Exports,
		limiter:    d.Limiter,
		dbHealth:   d.DBHealth,
		authLimit:  d.AuthRateLimit,
		authWindow: d.AuthRateWindow,
		metrics:    newMetrics(),
		tracer:     d.TracerProvider,
	}
	if r.limiter == nil && r.authLimit > 0 {
		r.limiter = NewMemoryRateLimiter()
	}
	r.register()
	return r
}

func (r *Router) register() {
	r.mux.HandleFunc("GET /healthz", r.handleHealthz)
	r.mux.Handle("GET /metrics", r.metrics.handler())

	r.handle("POST /auth/signup", r.withRateLimit("signup", r.handleSignup))
	r.handle("POST /auth/signin", r.withRateLimit("signin", r.handleSignin))

	r.handle("GET /users/me", r.requireAuth(r.handleMe))
	r.handle("PATCH /users", r.requireAuth(r.handleEditUser))

	r.handle("POST /bookmarks", r.requireAuth(r.handleCreateBookmark))
	r.handle("GET /bookmarks", r.requireAuth(r.handleListBookmarks))
	r.handle("POST /bookmarks/export", r.requireAuth(r.handleExport))
	r.handle("GET /bookmarks/{id}", r.requireAuth(r.handleGetBookmark))
	r.handle("PATCH /bookmarks/{id}", r.requireAuth(r.handleEditBookmark))
	r.handle("DELETE /bookmarks/{id}", r.requireAuth(r.handleDeleteBookmark))
}

func (r *Router) handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, nameSpan(pattern, r.metrics.instrument(pattern, h)))
}

// nameSpan renames the request span after the matched pattern. The span is
// started before routing, so until here it only carries the method.
func nameSpan(pattern string, next http.HandlerFunc) http.HandlerFunc {
	route := pattern
	if _, path, ok := strings.Cut(pattern, " "); ok {
		route = path
	}
	return func(w http.ResponseWriter, req *http.Request) {
		span := trace.SpanFromContext(req.Context())
		span.SetName(req.Method + " " + route)
		span.SetAttributes(attribute.String("http.route", route))
		next(w, req)
	}
}

// Handler returns the mux wrapped in the middleware chain: request id,
// access log, tracing, CORS.
func (r *Router) Handler() http.Handler {
	opts := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return req.Method
		}),
	}
	if r.tracer != nil {
		opts = append(opts, otelhttp.WithTracerProvider(r.tracer))
	}
	traced := otelhttp.NewHandler(cors(r.mux), "bookmarks.http", opts...)
	return withRequestID(r.accessLog(traced))
}

// Close releases the rate limiter.
func (r *Router) Close() error {
	if r.limiter != nil {
		return r.limiter.Close()
	}
	return nil
}

func (r *Router) handleHealthz(w http.ResponseWriter, req *http.Request) {
	if r.dbHealth != nil {
		ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
		defer cancel()
		if err := r.dbHealth(ctx); err != nil {
			r.logger.Warn(req.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
