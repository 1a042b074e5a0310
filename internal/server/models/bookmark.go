package models

import "time"

type Bookmark struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// BookmarkPatch carries the optional fields of an edit. Nil means unchanged.
type BookmarkPatch struct {
	Title       *string
	Link        *string
	Description *string
}

func (p BookmarkPatch) Empty() bool {
	return p.Title == nil && p.Link == nil && p.Description == nil
}

// Apply copies the set fields onto b.
func (p BookmarkPatch) Apply(b *Bookmark) {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Link != nil {
		b.Link = *p.Link
	}
	if p.Description != nil {
		b.Description = p.Description
	}
}
