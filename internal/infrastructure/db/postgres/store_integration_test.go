package postgres

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

// testPool connects to TEST_DATABASE_URL inside a throwaway schema. Tests
// using it are skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	admin, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(admin.Close)

	name := "tracker_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := admin.Exec(ctx, `CREATE SCHEMA `+name); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), `DROP SCHEMA `+name+` CASCADE`)
	})

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	cfg.ConnConfig.RuntimeParams["search_path"] = name

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		t.Fatalf("connect schema: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pool
}

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedUser(t *testing.T, repo *UserRepository, email, name string) *domain.User {
	t.Helper()
	u, err := repo.Create(context.Background(), &domain.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         name,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func seedTask(t *testing.T, repo *TaskRepository, owner int64, name, due string) *domain.Task {
	t.Helper()
	task, err := repo.Insert(context.Background(), &domain.Task{
		OwnerID:          owner,
		Name:             name,
		RegistrationDate: day("2024-01-01"),
		DueDate:          day(due),
	})
	if err != nil {
		t.Fatalf("insert %s: %v", name, err)
	}
	return task
}

func ids(tasks []*domain.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStore_Integration(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	users := NewUserRepository(pool)
	tasks := NewTaskRepository(pool)

	alice := seedUser(t, users, "alice@example.com", "Alice Walker")
	bob := seedUser(t, users, "bob@example.com", "Bob")

	late := seedTask(t, tasks, bob.ID, "Water plants", "2024-06-01")
	first := seedTask(t, tasks, alice.ID, "Pay rent", "2024-03-01")
	second := seedTask(t, tasks, bob.ID, "Buy milk", "2024-03-01")

	t.Run("duplicate email", func(t *testing.T) {
		_, err := users.Create(ctx, &domain.User{Email: "alice@example.com", PasswordHash: "h", Name: "A", CreatedAt: time.Now()})
		if !errors.Is(err, domain.ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("orders by due date then id", func(t *testing.T) {
		got, err := tasks.List(ctx, domain.TaskFilter{Kind: domain.FilterAll})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		want := []int64{first.ID, second.ID, late.ID}
		if !equalIDs(ids(got), want) {
			t.Fatalf("expected %v, got %v", want, ids(got))
		}
		if got[0].OwnerName != "Alice Walker" {
			t.Fatalf("expected joined owner name, got %q", got[0].OwnerName)
		}
	})

	t.Run("search matches task or owner name case-insensitively", func(t *testing.T) {
		got, err := tasks.List(ctx, domain.TaskFilter{Kind: domain.FilterSearch, Term: "WALK"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if !equalIDs(ids(got), []int64{first.ID}) {
			t.Fatalf("owner-name match: got %v", ids(got))
		}

		got, err = tasks.List(ctx, domain.TaskFilter{Kind: domain.FilterSearch, Term: "mIlK"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if !equalIDs(ids(got), []int64{second.ID}) {
			t.Fatalf("task-name match: got %v", ids(got))
		}

		got, err = tasks.List(ctx, domain.TaskFilter{Kind: domain.FilterSearch, Term: "%"})
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("expected %% to match literally, got %v", ids(got))
		}
	})

	t.Run("update keeps registration date", func(t *testing.T) {
		edited := *late
		edited.Name = "Water all plants"
		edited.OwnerID = alice.ID
		edited.DueDate = day("2024-02-01")
		edited.RegistrationDate = day("2030-01-01")
		edited.Completed = true
		if err := tasks.Update(ctx, &edited); err != nil {
			t.Fatalf("update: %v", err)
		}

		got, err := tasks.Get(ctx, late.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !got.RegistrationDate.Equal(day("2024-01-01")) {
			t.Fatalf("registration date changed to %v", got.RegistrationDate)
		}
		if got.Name != "Water all plants" || got.OwnerID != alice.ID || !got.Completed || !got.DueDate.Equal(day("2024-02-01")) {
			t.Fatalf("unexpected task after update %+v", got)
		}

		done, err := tasks.List(ctx, domain.TaskFilter{Kind: domain.FilterCompleted})
		if err != nil {
			t.Fatalf("list completed: %v", err)
		}
		if !equalIDs(ids(done), []int64{late.ID}) {
			t.Fatalf("expected only %d completed, got %v", late.ID, ids(done))
		}
	})

	t.Run("update to an unknown owner", func(t *testing.T) {
		edited := *first
		edited.OwnerID = 999999
		if err := tasks.Update(ctx, &edited); !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("update of a missing task", func(t *testing.T) {
		if err := tasks.Update(ctx, &domain.Task{ID: 999999, OwnerID: alice.ID, Name: "x", DueDate: day("2024-01-01")}); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
	})

	t.Run("second delete is not found", func(t *testing.T) {
		if err := tasks.Delete(ctx, second.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := tasks.Delete(ctx, second.ID); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected ErrTaskNotFound, got %v", err)
		}
		if _, err := tasks.Get(ctx, second.ID); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("expected deleted task to be gone, got %v", err)
		}
	})
}
