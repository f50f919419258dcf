package ports

import (
	"context"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}
