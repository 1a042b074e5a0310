package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/bookmarks/internal/client/client"
	"github.com/dmitrijs2005/bookmarks/internal/client/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records calls and returns canned answers.
type fakeAPI struct {
	token string

	email    string
	password string
	authErr  error

	created  client.NewBookmark
	edited   client.BookmarkPatch
	deleted  int64
	items    []client.Bookmark
	bookmark *client.Bookmark
	userPat  client.UserPatch
	export   *client.Export
	err      error
	pingErr  error
}

func (f *fakeAPI) Token() string         { return f.token }
func (f *fakeAPI) SetToken(token string) { f.token = token }

func (f *fakeAPI) SignUp(ctx context.Context, email string, password []byte) error {
	return f.SignIn(ctx, email, password)
}

func (f *fakeAPI) SignIn(_ context.Context, email string, password []byte) error {
	f.email, f.password = email, string(password)
	if f.authErr != nil {
		return f.authErr
	}
	f.token = "tok"
	return nil
}

func (f *fakeAPI) Me(context.Context) (*client.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &client.User{ID: 1, Email: f.email}, nil
}

func (f *fakeAPI) EditUser(_ context.Context, p client.UserPatch) (*client.User, error) {
	f.userPat = p
	return &client.User{ID: 1, FirstName: p.FirstName, LastName: p.LastName}, f.err
}

func (f *fakeAPI) ListBookmarks(context.Context) ([]client.Bookmark, error) { return f.items, f.err }

func (f *fakeAPI) CreateBookmark(_ context.Context, in client.NewBookmark) (*client.Bookmark, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &client.Bookmark{ID: 9, Title: in.Title, Link: in.Link}, nil
}

func (f *fakeAPI) GetBookmark(_ context.Context, id int64) (*client.Bookmark, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bookmark, nil
}

func (f *fakeAPI) EditBookmark(_ context.Context, id int64, p client.BookmarkPatch) (*client.Bookmark, error) {
	f.edited = p
	if f.err != nil {
		return nil, f.err
	}
	return f.bookmark, nil
}

func (f *fakeAPI) DeleteBookmark(_ context.Context, id int64) error {
	f.deleted = id
	return f.err
}

func (f *fakeAPI) ExportBookmarks(context.Context) (*client.Export, error) { return f.export, f.err }

func (f *fakeAPI) Ping(context.Context) error { return f.pingErr }

func newTestApp(api *fakeAPI, input ...string) (*App, *bytes.Buffer) {
	var out bytes.Buffer
	return &App{
		config: &config.Config{},
		api:    api,
		reader: bufio.NewReader(strings.NewReader(strings.Join(input, "\n") + "\n")),
		out:    &out,
	}, &out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	getPassword = func(w io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = old })
}

func TestSignIn_KeepsUserAndWipesPassword(t *testing.T) {
	stubPassword(t, "123")
	api := &fakeAPI{}
	app, out := newTestApp(api, "a@b.c")

	require.NoError(t, app.SignIn(context.Background()))

	assert.Equal(t, "a@b.c", api.email)
	assert.Equal(t, "123", api.password)
	assert.True(t, app.isLoggedIn())
	assert.Equal(t, "(a@b.c online)", app.getStatus())
	assert.Contains(t, out.String(), "Signed in")

	require.NoError(t, app.Logout(context.Background()))
	assert.False(t, app.isLoggedIn())
}

func TestSignUp_ReportsServerMessage(t *testing.T) {
	stubPassword(t, "123")
	api := &fakeAPI{authErr: &client.APIError{StatusCode: 403, Message: "Credentials taken"}}
	app, out := newTestApp(api, "a@b.c")

	err := app.SignUp(context.Background())
	require.ErrorIs(t, err, client.ErrForbidden)
	assert.Contains(t, out.String(), "Error: Credentials taken")
	assert.False(t, app.isLoggedIn())
}

func TestAdd(t *testing.T) {
	api := &fakeAPI{token: "tok"}
	app, out := newTestApp(api, "Go", "https://go.dev", "line one", "line two", "")

	require.NoError(t, app.Add(context.Background()))

	assert.Equal(t, "Go", api.created.Title)
	assert.Equal(t, "https://go.dev", api.created.Link)
	require.NotNil(t, api.created.Description)
	assert.Equal(t, "line one\nline two", *api.created.Description)
	assert.Contains(t, out.String(), "Bookmark 9 created")
}

func TestAdd_NoDescription(t *testing.T) {
	api := &fakeAPI{token: "tok"}
	app, _ := newTestApp(api, "Go", "https://go.dev", "")

	require.NoError(t, app.Add(context.Background()))
	assert.Nil(t, api.created.Description)
}

func TestList(t *testing.T) {
	api := &fakeAPI{items: []client.Bookmark{{ID: 1, Title: "Go", Link: "https://go.dev"}}}
	app, out := newTestApp(api)

	require.NoError(t, app.List(context.Background()))
	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "https://go.dev")

	api.items = nil
	out.Reset()
	require.NoError(t, app.List(context.Background()))
	assert.Contains(t, out.String(), "No bookmarks yet")
}

func TestShowAndDelete_ParseID(t *testing.T) {
	desc := "docs"
	api := &fakeAPI{bookmark: &client.Bookmark{ID: 3, Title: "Go", Description: &desc}}
	app, out := newTestApp(api, "3")

	require.NoError(t, app.Show(context.Background(), nil))
	assert.Contains(t, out.String(), "Description: docs")

	require.NoError(t, app.Delete(context.Background(), []string{"3"}))
	assert.Equal(t, int64(3), api.deleted)

	assert.ErrorIs(t, app.Delete(context.Background(), []string{"x"}), errBadID)
	assert.ErrorIs(t, app.Show(context.Background(), []string{"0"}), errBadID)
}

func TestEdit_EmptyAnswersKeepValues(t *testing.T) {
	api := &fakeAPI{bookmark: &client.Bookmark{ID: 3, Title: "Golang"}}
	app, _ := newTestApp(api, "Golang", "", "")

	require.NoError(t, app.Edit(context.Background(), []string{"3"}))
	require.NotNil(t, api.edited.Title)
	assert.Equal(t, "Golang", *api.edited.Title)
	assert.Nil(t, api.edited.Link)
	assert.Nil(t, api.edited.Description)
}

func TestProfile(t *testing.T) {
	api := &fakeAPI{}
	app, out := newTestApp(api, "Ann", "")

	require.NoError(t, app.Profile(context.Background()))
	require.NotNil(t, api.userPat.FirstName)
	assert.Nil(t, api.userPat.LastName)
	assert.Contains(t, out.String(), "Profile updated: Ann -")
}

func TestExport(t *testing.T) {
	api := &fakeAPI{export: &client.Export{URL: "https://s3/x", ExpiresAt: time.Now()}}
	app, out := newTestApp(api)

	require.NoError(t, app.Export(context.Background()))
	assert.Contains(t, out.String(), "https://s3/x")
}

func TestReport(t *testing.T) {
	app, out := newTestApp(&fakeAPI{})

	app.report(client.ErrNotLoggedIn)
	assert.Contains(t, out.String(), "Please sign in first")

	out.Reset()
	app.report(errors.Join(client.ErrUnavailable, errors.New("dial")))
	assert.Contains(t, out.String(), "Server unavailable")
	assert.Equal(t, ModeOffline, app.Mode)
}

func TestCheckOnline_SwitchesMode(t *testing.T) {
	var buf bytes.Buffer
	old := log.Default().Writer()
	defer log.SetOutput(old)
	log.SetOutput(&buf)

	api := &fakeAPI{}
	app, _ := newTestApp(api)

	app.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, app.Mode)
	assert.NotEmpty(t, buf.String())

	buf.Reset()
	app.checkOnline(context.Background())
	assert.Empty(t, buf.String())

	api.pingErr = client.ErrUnavailable
	app.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, app.Mode)
}

func TestIsLoggedIn(t *testing.T) {
	app, _ := newTestApp(&fakeAPI{})
	assert.False(t, app.isLoggedIn())

	app.api.SetToken("tok")
	assert.True(t, app.isLoggedIn())
}

func TestNewApp_BadURL(t *testing.T) {
	_, err := NewApp(&config.Config{ServerURL: "nope"})
	assert.Error(t, err)
}
