// Package users is the credential store: user rows keyed by id and by a
// unique email.
package users

import (
	"context"

	"github.com/dmitrijs2005/bookmarks/internal/server/models"
)

// Repository persists users. Create reports a duplicate email as
// *common.ConstraintViolationError with Field "email"; lookups of absent rows
// return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
}
