package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) record(name string, args []string) {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
}
func (f *fakeExec) SignUp(ctx context.Context) error { f.record("signup", nil); return nil }
func (f *fakeExec) SignIn(ctx context.Context) error {
	f.record("signin", nil)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Me(ctx context.Context) error      { f.record("me", nil); return nil }
func (f *fakeExec) Profile(ctx context.Context) error { f.record("profile", nil); return nil }
func (f *fakeExec) List(ctx context.Context) error    { f.record("list", nil); return nil }
func (f *fakeExec) Add(ctx context.Context) error     { f.record("add", nil); return nil }
func (f *fakeExec) Show(ctx context.Context, args []string) error {
	f.record("show", args)
	return nil
}
func (f *fakeExec) Edit(ctx context.Context, args []string) error {
	f.record("edit", args)
	return nil
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	f.record("delete", args)
	return nil
}
func (f *fakeExec) Export(ctx context.Context) error { f.record("export", nil); return nil }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.record("logout", nil)
	f.loggedIn = false
	return nil
}

func silencePrint(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	silencePrint(t)

	input := bufio.NewReader(strings.NewReader(strings.Join([]string{
		"help",
		"signin",
		"help",
		"add",
		"list",
		"show 12",
		"edit",
		"delete 12",
		"export",
		"me",
		"profile",
		"logout",
		"exit",
		"list",
	}, "\n")))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, input)

	assert.Equal(t, []string{"signin", "add", "list", "show", "edit", "delete", "export", "me", "profile", "logout"}, exec.calls)
	assert.Equal(t, []string{"12"}, exec.args[3])
	assert.Empty(t, exec.args[4])
	assert.Equal(t, []string{"12"}, exec.args[5])
}

func TestRunREPL_UnknownAndEOF(t *testing.T) {
	lines := silencePrint(t)

	input := bufio.NewReader(strings.NewReader("\nfoobar"))
	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, input)

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, "Unknown command: foobar")
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	silencePrint(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("list\n")))
	assert.Empty(t, exec.calls)
}
