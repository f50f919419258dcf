package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
	"github.com/todoboard/task-tracker/pkg/logger"
)

// List labels shown as the page title.
const (
	LabelTaskList       = "Task list"
	LabelCompletedTasks = "Completed tasks"
	LabelSearchResults  = "Search results"
)

type TaskService struct {
	tasks  ports.TaskRepository
	users  ports.UserRepository
	now    func() time.Time
	logger zerolog.Logger
}

func NewTaskService(tasks ports.TaskRepository, users ports.UserRepository, logger zerolog.Logger) *TaskService {
	return &TaskService{tasks: tasks, users: users, now: time.Now, logger: logger}
}

// ListTasks picks the filter from q: a search term first, then the completed
// flag, falling back to incomplete tasks.
func (s *TaskService) ListTasks(ctx context.Context, actor *domain.Actor, q ports.ListQuery) (*ports.TaskList, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	list := &ports.TaskList{Today: domain.Date(s.now())}
	var filter domain.TaskFilter

	term := strings.TrimSpace(q.Search)
	switch {
	case term != "":
		filter = domain.TaskFilter{Kind: domain.FilterSearch, Term: term}
		list.Label = LabelSearchResults
	case q.Completed:
		filter = domain.TaskFilter{Kind: domain.FilterCompleted}
		list.Label = LabelCompletedTasks
	default:
		filter = domain.TaskFilter{Kind: domain.FilterIncomplete}
		list.Label = LabelTaskList
	}
	list.Kind = filter.Kind

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	list.Tasks = tasks

	if filter.Kind == domain.FilterSearch && len(tasks) == 0 {
		list.NoResults = true
		s.log(ctx).Debug().Str("term", term).Msg("search returned no tasks")
	}
	return list, nil
}

func (s *TaskService) GetTask(ctx context.Context, actor *domain.Actor, id int64) (*domain.Task, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.tasks.Get(ctx, id)
}

// Assignees returns the users a task can be assigned to: all of them.
func (s *TaskService) Assignees(ctx context.Context, actor *domain.Actor) ([]*domain.User, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	return users, nil
}

// CreateTask validates in and stores a new task registered today.
func (s *TaskService) CreateTask(ctx context.Context, actor *domain.Actor, in ports.TaskInput) (*ports.TaskResult, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if in.Cancel {
		return &ports.TaskResult{Cancelled: true}, nil
	}

	due, err := s.validateTaskInput(ctx, in)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		OwnerID:          in.OwnerID,
		Name:             strings.TrimSpace(in.Name),
		RegistrationDate: domain.Date(s.now()),
		DueDate:          due,
		Completed:        in.Completed,
	}

	created, err := s.tasks.Insert(ctx, task)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, assigneeGone()
		}
		s.log(ctx).Error().Err(err).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.log(ctx).Info().
		Int64("task_id", created.ID).
		Int64("owner_id", created.OwnerID).
		Int64("actor_id", actor.UserID()).
		Msg("task created")
	return &ports.TaskResult{Task: created}, nil
}

// EditTask overwrites owner, name, due date and completion of an existing
// task. The registration date is left untouched.
func (s *TaskService) EditTask(ctx context.Context, actor *domain.Actor, id int64, in ports.TaskInput) (*ports.TaskResult, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Cancel {
		return &ports.TaskResult{Task: task, Cancelled: true}, nil
	}

	due, err := s.validateTaskInput(ctx, in)
	if err != nil {
		return nil, err
	}

	task.OwnerID = in.OwnerID
	task.Name = strings.TrimSpace(in.Name)
	task.DueDate = due
	task.Completed = in.Completed

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, assigneeGone()
		}
		return nil, fmt.Errorf("edit task: %w", err)
	}

	s.log(ctx).Info().Int64("task_id", id).Int64("actor_id", actor.UserID()).Msg("task updated")
	return &ports.TaskResult{Task: task}, nil
}

// CompleteTask marks the task done. Completing a completed task succeeds.
func (s *TaskService) CompleteTask(ctx context.Context, actor *domain.Actor, id int64) (*domain.Task, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return task, nil
	}

	task.Completed = true
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("complete task: %w", err)
	}

	s.log(ctx).Info().Int64("task_id", id).Int64("actor_id", actor.UserID()).Msg("task completed")
	return task, nil
}

// PrepareDelete is the confirmation step of a delete. It never mutates.
func (s *TaskService) PrepareDelete(ctx context.Context, actor *domain.Actor, id int64) (*domain.Task, error) {
	return s.GetTask(ctx, actor, id)
}

// DeleteTask removes the task only when confirm is set.
func (s *TaskService) DeleteTask(ctx context.Context, actor *domain.Actor, id int64, confirm bool) (*ports.TaskResult, error) {
	if !actor.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	task, err := s.tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !confirm {
		return &ports.TaskResult{Task: task, Cancelled: true}, nil
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.log(ctx).Info().Int64("task_id", id).Int64("actor_id", actor.UserID()).Msg("task deleted")
	return &ports.TaskResult{Task: task}, nil
}

// validateTaskInput checks the form fields and that the assignee exists,
// returning the parsed due date.
func (s *TaskService) validateTaskInput(ctx context.Context, in ports.TaskInput) (time.Time, error) {
	v := domain.NewValidationError()

	if strings.TrimSpace(in.Name) == "" {
		v.Add("task_name", "task name is required")
	}

	var due time.Time
	if strings.TrimSpace(in.DueDate) == "" {
		v.Add("due_date", "due date is required")
	} else if d, err := domain.ParseDate(strings.TrimSpace(in.DueDate)); err != nil {
		v.Add("due_date", "due date must be a date in YYYY-MM-DD format")
	} else {
		due = d
	}

	if in.OwnerID <= 0 {
		v.Add("charge", "assignee is required")
	} else if _, err := s.users.FindByID(ctx, in.OwnerID); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return time.Time{}, fmt.Errorf("check assignee: %w", err)
		}
		v.Add("charge", "assignee does not exist")
	}

	return due, v.OrNil()
}

func assigneeGone() error {
	v := domain.NewValidationError()
	v.Add("charge", "assignee does not exist")
	return v
}

// log prefers the request's logger so entries carry its request id.
func (s *TaskService) log(ctx context.Context) *zerolog.Logger {
	return logger.FromContext(ctx, &s.logger)
}
