package ports

import (
	"context"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	// Get returns the task with its OwnerName, or domain.ErrTaskNotFound.
	Get(ctx context.Context, id int64) (*domain.Task, error)
	// Insert assigns the id. Returns domain.ErrUserNotFound when OwnerID does
	// not reference an existing user.
	Insert(ctx context.Context, t *domain.Task) (*domain.Task, error)
	// Update writes owner, name, due date and completion. RegistrationDate is
	// never written.
	Update(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id int64) error
	// List returns the tasks matching filter ordered by due date, then id.
	List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)
}
