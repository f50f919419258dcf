package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

const taskSelect = `
	SELECT t.id, t.owner_id, t.name, t.registration_date, t.due_date, t.completed, COALESCE(u.name, '')
	FROM tasks t
	LEFT JOIN users u ON u.id = t.owner_id`

const taskOrder = ` ORDER BY t.due_date, t.id`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// Insert stores the task only when the owner exists, in one statement.
func (r *TaskRepository) Insert(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (owner_id, name, registration_date, due_date, completed)
		 SELECT $1, $2, $3, $4, $5
		 WHERE EXISTS (SELECT 1 FROM users WHERE id = $1)
		 RETURNING id`,
		t.OwnerID,
		t.Name,
		domain.Date(t.RegistrationDate),
		domain.Date(t.DueDate),
		t.Completed,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || hasCode(err, codeForeignKeyViolation) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return r.get(ctx, id)
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.get(ctx, id)
}

func (r *TaskRepository) get(ctx context.Context, id int64) (*domain.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// Update writes owner, name, due date and completion in a transaction that
// first locks the row, so a missing task and a missing owner are told apart.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked int64
	if err := tx.QueryRow(ctx, `SELECT id FROM tasks WHERE id = $1 FOR UPDATE`, t.ID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return fmt.Errorf("lock task: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE tasks SET owner_id = $2, name = $3, due_date = $4, completed = $5 WHERE id = $1`,
		t.ID,
		t.OwnerID,
		t.Name,
		domain.Date(t.DueDate),
		t.Completed,
	)
	if err != nil {
		if hasCode(err, codeForeignKeyViolation) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, args := listQuery(f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// listQuery builds the SELECT for f. Search uses position() instead of LIKE
// so the term needs no escaping.
func listQuery(f domain.TaskFilter) (string, []any) {
	switch f.Kind {
	case domain.FilterCompleted:
		return taskSelect + ` WHERE t.completed` + taskOrder, nil
	case domain.FilterIncomplete:
		return taskSelect + ` WHERE NOT t.completed` + taskOrder, nil
	case domain.FilterSearch:
		return taskSelect + ` WHERE position(lower($1) in lower(t.name)) > 0
			OR position(lower($1) in lower(COALESCE(u.name, ''))) > 0` + taskOrder, []any{f.Term}
	default:
		return taskSelect + taskOrder, nil
	}
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Name,
		&t.RegistrationDate,
		&t.DueDate,
		&t.Completed,
		&t.OwnerName,
	); err != nil {
		return nil, err
	}
	t.RegistrationDate = domain.Date(t.RegistrationDate)
	t.DueDate = domain.Date(t.DueDate)
	return &t, nil
}
