package ports

import (
	"context"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

// UserRepository is the credential store.
type UserRepository interface {
	// FindByEmail is an exact, case-sensitive match. Returns domain.ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// Create assigns the id and returns domain.ErrDuplicateEmail when the
	// email is taken. The uniqueness check and the insert are atomic.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// List returns every user ordered by id.
	List(ctx context.Context) ([]*domain.User, error)
}
