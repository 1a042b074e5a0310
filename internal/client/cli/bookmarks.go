package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/bookmarks/internal/client/client"
)

var errBadID = errors.New("bookmark id must be a positive number")

// List prints the caller's bookmarks as a table.
func (a *App) List(ctx context.Context) error {
	items, err := a.api.ListBookmarks(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No bookmarks yet")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tLINK")
	for _, b := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", b.ID, b.Title, b.Link)
	}
	return tw.Flush()
}

// Add prompts for title, link and an optional multi-line description.
func (a *App) Add(ctx context.Context) error {
	title, err := getLine(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	link, err := getLine(a.reader, "Enter link", a.out)
	if err != nil {
		return err
	}
	description, err := promptDescription(a.reader, "Enter description (optional)", a.out)
	if err != nil {
		return err
	}

	b, err := a.api.CreateBookmark(ctx, client.NewBookmark{Title: title, Link: link, Description: optional(description)})
	if err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintf(a.out, "Bookmark %d created\n", b.ID)
	return nil
}

// Show prints one bookmark. The id comes from args or a prompt.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.bookmarkID(args, "Enter bookmark id to show")
	if err != nil {
		return err
	}

	b, err := a.api.GetBookmark(ctx, id)
	if err != nil {
		a.report(err)
		return err
	}
	a.printBookmark(b)
	return nil
}

// Edit prompts for new values. Empty answers keep the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.bookmarkID(args, "Enter bookmark id to edit")
	if err != nil {
		return err
	}

	title, err := getLine(a.reader, "New title (empty to keep)", a.out)
	if err != nil {
		return err
	}
	link, err := getLine(a.reader, "New link (empty to keep)", a.out)
	if err != nil {
		return err
	}
	description, err := getLine(a.reader, "New description (empty to keep)", a.out)
	if err != nil {
		return err
	}

	b, err := a.api.EditBookmark(ctx, id, client.BookmarkPatch{
		Title:       optional(title),
		Link:        optional(link),
		Description: optional(description),
	})
	if err != nil {
		a.report(err)
		return err
	}
	a.printBookmark(b)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.bookmarkID(args, "Enter bookmark id to delete")
	if err != nil {
		return err
	}

	if err := a.api.DeleteBookmark(ctx, id); err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintf(a.out, "Bookmark %d deleted\n", id)
	return nil
}

// Export prints a time-limited download link for a JSON snapshot.
func (a *App) Export(ctx context.Context) error {
	e, err := a.api.ExportBookmarks(ctx)
	if err != nil {
		a.report(err)
		return err
	}
	fmt.Fprintf(a.out, "Download until %s:\n%s\n", e.ExpiresAt.Local().Format("2006-01-02 15:04"), e.URL)
	return nil
}

func (a *App) bookmarkID(args []string, prompt string) (int64, error) {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	} else {
		var err error
		if raw, err = getLine(a.reader, prompt, a.out); err != nil {
			return 0, err
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintln(a.out, "Error:", errBadID)
		return 0, errBadID
	}
	return id, nil
}

func (a *App) printBookmark(b *client.Bookmark) {
	fmt.Fprintf(a.out, "ID:          %d\n", b.ID)
	fmt.Fprintf(a.out, "Title:       %s\n", b.Title)
	fmt.Fprintf(a.out, "Link:        %s\n", b.Link)
	if b.Description != nil {
		fmt.Fprintf(a.out, "Description: %s\n", *b.Description)
	}
	fmt.Fprintf(a.out, "Updated:     %s\n", b.UpdatedAt.Local().Format("2006-01-02 15:04"))
}
