package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrPasswordMismatch = errors.New("password mismatch")
)

// User models a registered account. Users own tasks and are never edited or
// removed once created.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Actor is the request-scoped identity handed to every task operation.
// A nil Actor or one without a User is anonymous.
type Actor struct {
	User *User
}

// Authenticated reports whether the actor carries a resolved user.
func (a *Actor) Authenticated() bool {
	return a != nil && a.User != nil
}

// UserID returns the authenticated user's id, or 0 when anonymous.
func (a *Actor) UserID() int64 {
	if !a.Authenticated() {
		return 0
	}
	return a.User.ID
}
