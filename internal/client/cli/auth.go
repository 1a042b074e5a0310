package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bookmarks/internal/client/client"
	"github.com/dmitrijs2005/bookmarks/internal/common"
)

// getLine and getPassword point at the interactive prompts; tests swap them.
var getLine = promptLine
var getPassword = promptPassword

// SignUp prompts for an email and password and creates the account. The
// session starts logged in as the new user.
func (a *App) SignUp(ctx context.Context) error {
	return a.authenticate(ctx, a.api.SignUp, "Account created")
}

// SignIn prompts for credentials and starts a session.
func (a *App) SignIn(ctx context.Context) error {
	return a.authenticate(ctx, a.api.SignIn, "Signed in")
}

func (a *App) authenticate(ctx context.Context, do func(context.Context, string, []byte) error, success string) error {
	email, err := getLine(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := do(ctx, email, password); err != nil {
		a.report(err)
		return err
	}

	a.userName = email
	a.setMode(ModeOnline)
	fmt.Fprintln(a.out, success)
	return nil
}

// Logout forgets the access token.
func (a *App) Logout(ctx context.Context) error {
	a.api.SetToken("")
	a.userName = ""
	return nil
}

// Me prints the caller's profile.
func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		a.report(err)
		return err
	}

	fmt.Fprintf(a.out, "ID:         %d\n", u.ID)
	fmt.Fprintf(a.out, "Email:      %s\n", u.Email)
	fmt.Fprintf(a.out, "First name: %s\n", deref(u.FirstName))
	fmt.Fprintf(a.out, "Last name:  %s\n", deref(u.LastName))
	return nil
}

// Profile prompts for first and last name. Empty answers keep the current
// value.
func (a *App) Profile(ctx context.Context) error {
	first, err := getLine(a.reader, "First name (empty to keep)", a.out)
	if err != nil {
		return err
	}
	last, err := getLine(a.reader, "Last name (empty to keep)", a.out)
	if err != nil {
		return err
	}

	u, err := a.api.EditUser(ctx, client.UserPatch{FirstName: optional(first), LastName: optional(last)})
	if err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintf(a.out, "Profile updated: %s %s\n", deref(u.FirstName), deref(u.LastName))
	return nil
}
