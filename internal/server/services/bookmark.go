package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/dbx"
	"github.com/dmitrijs2005/bookmarks/internal/logging"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/bookmarks/internal/server/repositories/repomanager"
)

// BookmarkService enforces ownership: a bookmark is only ever read, changed
// or removed on behalf of the user it belongs to. A missing bookmark and one
// owned by someone else both come back as common.ErrForbidden.
type BookmarkService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewBookmarkService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *BookmarkService {
	return &BookmarkService{db: db, repomanager: m, logger: l.With("module", "bookmarks")}
}

func (s *BookmarkService) Create(ctx context.Context, userID int64, in NewBookmark) (*models.Bookmark, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	b, err := s.repomanager.Bookmarks(s.db).Create(ctx, &models.Bookmark{
		UserID:      userID,
		Title:       in.Title,
		Link:        in.Link,
		Description: in.Description,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create bookmark: %v", common.ErrorInternal, err)
	}

	s.logger.Debug(ctx, "bookmark created", "user_id", userID, "bookmark_id", b.ID)
	return b, nil
}

// List returns the caller's bookmarks ordered by id. Never nil.
func (s *BookmarkService) List(ctx context.Context, userID int64) ([]models.Bookmark, error) {
	items, err := s.repomanager.Bookmarks(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list bookmarks: %v", common.ErrorInternal, err)
	}
	if items == nil {
		items = []models.Bookmark{}
	}
	return items, nil
}

func (s *BookmarkService) Get(ctx context.Context, userID, id int64) (*models.Bookmark, error) {
	var out *models.Bookmark
	err := s.withOwned(ctx, userID, id, func(ctx context.Context, repo bookmarks.Repository, b *models.Bookmark) error {
		out = b
		return nil
	})
	return out, err
}

func (s *BookmarkService) Edit(ctx context.Context, userID, id int64, patch models.BookmarkPatch) (*models.Bookmark, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var out *models.Bookmark
	err := s.withOwned(ctx, userID, id, func(ctx context.Context, repo bookmarks.Repository, b *models.Bookmark) error {
		if patch.Empty() {
			out = b
			return nil
		}
		updated, err := repo.Update(ctx, id, patch)
		if err != nil {
			return err
		}
		out = updated
		return nil
	})
	return out, err
}

func (s *BookmarkService) Delete(ctx context.Context, userID, id int64) error {
	return s.withOwned(ctx, userID, id, func(ctx context.Context, repo bookmarks.Repository, b *models.Bookmark) error {
		return repo.Delete(ctx, id)
	})
}

// withOwned loads bookmark id inside a transaction, checks it belongs to
// userID and hands it to fn. The row is read fresh on every call.
func (s *BookmarkService) withOwned(ctx context.Context, userID, id int64,
	fn func(ctx context.Context, repo bookmarks.Repository, b *models.Bookmark) error) error {

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Bookmarks(tx)

		b, err := repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrForbidden
			}
			return err
		}
		if b.UserID != userID {
			s.logger.Warn(ctx, "bookmark access denied", "user_id", userID, "bookmark_id", id)
			return common.ErrForbidden
		}

		return fn(ctx, repo, b)
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrForbidden):
		return common.ErrForbidden
	case errors.Is(err, common.ErrorNotFound):
		// row vanished between the check and the write
		return common.ErrForbidden
	default:
		return fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
}
