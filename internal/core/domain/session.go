package domain

import "time"

// Flash categories, mirrored by the templates' CSS classes.
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot notice shown on the next rendered page only.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Session binds a browser to an optional user. UserID zero is anonymous.
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id,omitempty"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Authenticated reports whether the session is bound to a user.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}
