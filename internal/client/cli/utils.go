package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookmarks/internal/client/client"
)

// report prints a user-facing line for err.
func (a *App) report(err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrNotLoggedIn), errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Please sign in first")
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server unavailable")
	case errors.As(err, &apiErr) && apiErr.Message != "":
		fmt.Fprintln(a.out, "Error:", apiErr.Message)
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
