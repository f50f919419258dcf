package ports

import (
	"context"
	"time"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

// SessionStore persists session records keyed by their opaque id.
type SessionStore interface {
	// Get returns domain.ErrNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Save writes the whole record and refreshes its ttl.
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// SessionManager is the request-facing side of session handling.
type SessionManager interface {
	// Resolve maps a cookie token to its session and actor. An empty, forged
	// or expired token yields a nil session and an anonymous actor.
	// domain.ErrSessionInvalid is returned when the session's user is gone.
	Resolve(ctx context.Context, token string) (*domain.Session, *domain.Actor, error)
	// Login binds user to the session, creating one when s is nil, and
	// returns the session with its fresh token.
	Login(ctx context.Context, s *domain.Session, user *domain.User) (*domain.Session, string, error)
	Logout(ctx context.Context, s *domain.Session) error
	Destroy(ctx context.Context, s *domain.Session) error
	// AddFlash queues a notice, creating an anonymous session when s is nil.
	// The returned token is empty when the session already existed.
	AddFlash(ctx context.Context, s *domain.Session, f domain.Flash) (*domain.Session, string, error)
	PopFlashes(ctx context.Context, s *domain.Session) ([]domain.Flash, error)
	TTL() time.Duration
}
