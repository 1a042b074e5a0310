package services

import (
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/bookmarks/internal/common"
	"github.com/dmitrijs2005/bookmarks/internal/server/models"
)

// Credentials is the signup/signin input.
type Credentials struct {
	Email    string
	Password string
}

// Validate checks the email is a bare address and both fields are present.
func (c Credentials) Validate() error {
	if c.Email == "" {
		return common.NewValidationError("email", "email should not be empty")
	}
	addr, err := mail.ParseAddress(c.Email)
	if err != nil || addr.Address != c.Email {
		return common.NewValidationError("email", "email must be an email")
	}
	if c.Password == "" {
		return common.NewValidationError("password", "password should not be empty")
	}
	return nil
}

// NewBookmark is the create input. Description is optional.
type NewBookmark struct {
	Title       string
	Link        string
	Description *string
}

func (b NewBookmark) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return common.NewValidationError("title", "title should not be empty")
	}
	if strings.TrimSpace(b.Link) == "" {
		return common.NewValidationError("link", "link should not be empty")
	}
	return nil
}

func validatePatch(p models.BookmarkPatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return common.NewValidationError("title", "title should not be empty")
	}
	if p.Link != nil && strings.TrimSpace(*p.Link) == "" {
		return common.NewValidationError("link", "link should not be empty")
	}
	return nil
}
