package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu          sync.RWMutex
	accessToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("server url %q: want http(s)://host[:port]", baseURL)
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(u.String(), "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

func (c *HTTPClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// SignUp creates an account and keeps the returned token.
func (c *HTTPClient) SignUp(ctx context.Context, email string, password []byte) error {
	return c.authenticate(ctx, "/auth/signup", email, password)
}

// SignIn keeps the token issued for the given credentials.
func (c *HTTPClient) SignIn(ctx context.Context, email string, password []byte) error {
	return c.authenticate(ctx, "/auth/signin", email, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, email string, password []byte) error {
	var tok tokenResponse
	if err := c.do(ctx, http.MethodPost, path, false, credentials{Email: email, Password: string(password)}, &tok); err != nil {
		return err
	}
	c.SetToken(tok.AccessToken)
	return nil
}

func (c *HTTPClient) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/users/me", true, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) EditUser(ctx context.Context, patch UserPatch) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPatch, "/users", true, patch, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	var items []Bookmark
	if err := c.do(ctx, http.MethodGet, "/bookmarks", true, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *HTTPClient) CreateBookmark(ctx context.Context, in NewBookmark) (*Bookmark, error) {
	var b Bookmark
	if err := c.do(ctx, http.MethodPost, "/bookmarks", true, in, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPClient) GetBookmark(ctx context.Context, id int64) (*Bookmark, error) {
	var b Bookmark
	if err := c.do(ctx, http.MethodGet, bookmarkPath(id), true, nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPClient) EditBookmark(ctx context.Context, id int64, patch BookmarkPatch) (*Bookmark, error) {
	var b Bookmark
	if err := c.do(ctx, http.MethodPatch, bookmarkPath(id), true, patch, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *HTTPClient) DeleteBookmark(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, bookmarkPath(id), true, nil, nil)
}

// ExportBookmarks asks the server for a snapshot and returns its download
// link.
func (c *HTTPClient) ExportBookmarks(ctx context.Context) (*Export, error) {
	var e Export
	if err := c.do(ctx, http.MethodPost, "/bookmarks/export", true, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Ping checks the server health endpoint.
func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", false, nil, nil)
}

func bookmarkPath(id int64) string {
	return "/bookmarks/" + strconv.FormatInt(id, 10)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		token := c.Token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil {
			apiErr.Message = e.Message
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
