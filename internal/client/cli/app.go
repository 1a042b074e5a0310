package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookmarks/internal/client/client"
	"github.com/dmitrijs2005/bookmarks/internal/client/config"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// apiClient is the part of client.HTTPClient the CLI uses.
type apiClient interface {
	Token() string
	SetToken(token string)
	SignUp(ctx context.Context, email string, password []byte) error
	SignIn(ctx context.Context, email string, password []byte) error
	Me(ctx context.Context) (*client.User, error)
	EditUser(ctx context.Context, patch client.UserPatch) (*client.User, error)
	ListBookmarks(ctx context.Context) ([]client.Bookmark, error)
	CreateBookmark(ctx context.Context, in client.NewBookmark) (*client.Bookmark, error)
	GetBookmark(ctx context.Context, id int64) (*client.Bookmark, error)
	EditBookmark(ctx context.Context, id int64, patch client.BookmarkPatch) (*client.Bookmark, error)
	DeleteBookmark(ctx context.Context, id int64) error
	ExportBookmarks(ctx context.Context) (*client.Export, error)
	Ping(ctx context.Context) error
}

type App struct {
	config   *config.Config
	api      apiClient
	userName string
	reader   *bufio.Reader
	out      io.Writer

	// Mode is written by the status watcher and read by the prompt.
	modeMu sync.Mutex
	Mode   Mode
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		return nil, err
	}

	return &App{config: c, api: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) setMode(mode Mode) {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	if a.Mode != mode {
		a.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.Token() != ""
}

// Run starts the connectivity watcher and the REPL and blocks until the user
// exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Println("Welcome to the bookmarks CLI (type 'help' for commands)")

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) getStatus() string {
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	a.modeMu.Lock()
	mode := a.Mode
	a.modeMu.Unlock()
	if mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = "(" + s + ")"
	}
	return s
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}
