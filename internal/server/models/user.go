package models

import "time"

// User is an account. Hash is the argon2id PHC string and never leaves the
// server.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Hash      string    `json:"-"`
	FirstName *string   `json:"firstName"`
	LastName  *string   `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserPatch holds the profile fields a user may change. Nil means unchanged.
type UserPatch struct {
	FirstName *string
	LastName  *string
}

func (p UserPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil
}
