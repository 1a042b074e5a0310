package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookmarks_RoundTrip(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signUp(t, "alice@x.y")

	list, err := e.bookmark.List(ctx, alice)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	b, err := e.bookmark.Create(ctx, alice, NewBookmark{Title: "First", Link: "https://a"})
	require.NoError(t, err)
	assert.Equal(t, alice, b.UserID)

	got, err := e.bookmark.Get(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)

	edited, err := e.bookmark.Edit(ctx, alice, b.ID, models.BookmarkPatch{Title: strPtr("Edited"), Description: strPtr("d")})
	require.NoError(t, err)
	assert.Equal(t, "Edited", edited.Title)
	assert.Equal(t, "https://a", edited.Link)
	assert.Equal(t, "d", *edited.Description)

	got, err = e.bookmark.Get(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Title)

	require.NoError(t, e.bookmark.Delete(ctx, alice, b.ID))

	list, err = e.bookmark.List(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = e.bookmark.Get(ctx, alice, b.ID)
	assert.ErrorIs(t, err, common.ErrForbidden, "deleted looks the same as foreign")
}

func TestBookmarks_ForeignOwnerIsForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signUp(t, "alice@x.y")
	bob := e.signUp(t, "bob@x.y")

	b, err := e.bookmark.Create(ctx, alice, NewBookmark{Title: "mine", Link: "https://a"})
	require.NoError(t, err)

	_, err = e.bookmark.Get(ctx, bob, b.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = e.bookmark.Edit(ctx, bob, b.ID, models.BookmarkPatch{Title: strPtr("pwned")})
	assert.ErrorIs(t, err, common.ErrForbidden)

	assert.ErrorIs(t, e.bookmark.Delete(ctx, bob, b.ID), common.ErrForbidden)

	_, err = e.bookmark.Get(ctx, bob, 999999)
	assert.ErrorIs(t, err, common.ErrForbidden, "absent and foreign are indistinguishable")

	got, err := e.bookmark.Get(ctx, alice, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", got.Title, "nothing changed")

	bobs, err := e.bookmark.List(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, bobs)
}

func TestBookmarks_Validation(t *testing.T) {
	svc := NewBookmarkService(nil, &stubManager{t: t}, logging.Discard())
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, NewBookmark{Title: "", Link: "https://a"})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Create(ctx, 1, NewBookmark{Title: "t", Link: " "})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.Edit(ctx, 1, 1, models.BookmarkPatch{Link: strPtr("")})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestBookmarks_StoreFailureIsInternal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	svc := NewBookmarkService(db, &stubManager{t: t, bookmarks: &fakeBookmarks{}}, logging.Discard())
	_, err = svc.Get(context.Background(), 1, 1)
	assert.ErrorIs(t, err, common.ErrorInternal)
	assert.NotErrorIs(t, err, common.ErrForbidden)

	svc = NewBookmarkService(nil, &stubManager{t: t, bookmarks: &fakeBookmarks{err: errors.New("db down")}}, logging.Discard())
	_, err = svc.List(context.Background(), 1)
	assert.ErrorIs(t, err, common.ErrorInternal)
}
