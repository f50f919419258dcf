package ports

import (
	"context"
	"time"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

// ListQuery is what the list page asked for. Search wins over Completed; a
// blank Search is treated as no search.
type ListQuery struct {
	Completed bool
	Search    string
}

// TaskList is the result of ListTasks.
type TaskList struct {
	Tasks []*domain.Task
	Label string
	Kind  domain.FilterKind
	// NoResults is set when a search matched nothing. It is distinct from an
	// empty incomplete/completed list.
	NoResults bool
	Today     time.Time
}

// TaskInput carries the create/edit form. DueDate is the raw YYYY-MM-DD text.
type TaskInput struct {
	OwnerID   int64
	Name      string
	DueDate   string
	Completed bool
	// Cancel discards the submission without touching the store.
	Cancel bool
}

// TaskResult is returned by mutating operations.
type TaskResult struct {
	Task *domain.Task
	// Cancelled is true when the caller backed out and nothing was written.
	Cancelled bool
}

// TaskService defines use-case operations for tasks. Every operation returns
// domain.ErrUnauthenticated for an anonymous actor before reaching a store.
type TaskService interface {
	ListTasks(ctx context.Context, actor *domain.Actor, q ListQuery) (*TaskList, error)
	GetTask(ctx context.Context, actor *domain.Actor, id int64) (*domain.Task, error)
	Assignees(ctx context.Context, actor *domain.Actor) ([]*domain.User, error)
	CreateTask(ctx context.Context, actor *domain.Actor, in TaskInput) (*TaskResult, error)
	EditTask(ctx context.Context, actor *domain.Actor, id int64, in TaskInput) (*TaskResult, error)
	CompleteTask(ctx context.Context, actor *domain.Actor, id int64) (*domain.Task, error)
	PrepareDelete(ctx context.Context, actor *domain.Actor, id int64) (*domain.Task, error)
	DeleteTask(ctx context.Context, actor *domain.Actor, id int64, confirm bool) (*TaskResult, error)
}
