// Package bookmarks persists bookmarks. It knows nothing about ownership
// rules; callers compare Bookmark.UserID themselves.
package bookmarks

import (
	"context"

	"github.com/dmitrijs2005/bookmarks/internal/server/models"
)

// Repository returns common.ErrorNotFound for ids that do not exist.
type Repository interface {
	Create(ctx context.Context, b *models.Bookmark) (*models.Bookmark, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Bookmark, error)
	GetByID(ctx context.Context, id int64) (*models.Bookmark, error)
	Update(ctx context.Context, id int64, patch models.BookmarkPatch) (*models.Bookmark, error)
	Delete(ctx context.Context, id int64) error
}
