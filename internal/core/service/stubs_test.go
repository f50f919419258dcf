package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID   map[int64]*domain.User
	nextID int64
	err    error // if set, every call returns it
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrDuplicateEmail
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// seedUser stores a user directly, bypassing hashing.
func (r *stubUserRepo) seedUser(email, name string) *domain.User {
	u, _ := r.Create(context.Background(), &domain.User{Email: email, Name: name})
	return u
}

// stubTaskRepo joins owners through users, mirroring the real stores.
type stubTaskRepo struct {
	users     *stubUserRepo
	byID      map[int64]*domain.Task
	nextID    int64
	calls     int   // number of calls of any kind
	updates   int   // number of Update calls
	updateErr error // if set, Update returns it
}

func newStubTaskRepo(users *stubUserRepo) *stubTaskRepo {
	return &stubTaskRepo{users: users, byID: make(map[int64]*domain.Task)}
}

func (r *stubTaskRepo) withOwner(t *domain.Task) *domain.Task {
	clone := *t
	if u, ok := r.users.byID[t.OwnerID]; ok {
		clone.OwnerName = u.Name
	}
	return &clone
}

func (r *stubTaskRepo) Get(_ context.Context, id int64) (*domain.Task, error) {
	r.calls++
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return r.withOwner(t), nil
}

func (r *stubTaskRepo) Insert(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.calls++
	if _, ok := r.users.byID[t.OwnerID]; !ok {
		return nil, domain.ErrUserNotFound
	}
	r.nextID++
	stored := *t
	stored.ID = r.nextID
	stored.OwnerName = ""
	r.byID[stored.ID] = &stored
	return r.withOwner(&stored), nil
}

func (r *stubTaskRepo) Update(_ context.Context, t *domain.Task) error {
	r.calls++
	r.updates++
	if r.updateErr != nil {
		return r.updateErr
	}
	existing, ok := r.byID[t.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if _, ok := r.users.byID[t.OwnerID]; !ok {
		return domain.ErrUserNotFound
	}
	existing.OwnerID = t.OwnerID
	existing.Name = t.Name
	existing.DueDate = t.DueDate
	existing.Completed = t.Completed
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id int64) error {
	r.calls++
	if _, ok := r.byID[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *stubTaskRepo) List(_ context.Context, f domain.TaskFilter) ([]*domain.Task, error) {
	r.calls++
	term := strings.ToLower(f.Term)
	var out []*domain.Task
	for _, t := range r.byID {
		joined := r.withOwner(t)
		switch f.Kind {
		case domain.FilterCompleted:
			if !t.Completed {
				continue
			}
		case domain.FilterIncomplete:
			if t.Completed {
				continue
			}
		case domain.FilterSearch:
			if !strings.Contains(strings.ToLower(joined.Name), term) &&
				!strings.Contains(strings.ToLower(joined.OwnerName), term) {
				continue
			}
		}
		out = append(out, joined)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].DueDate.Before(out[j].DueDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type stubSessionStore struct {
	byID    map[string]*domain.Session
	saves   int
	deletes int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{byID: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	sess, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *sess
	clone.Flashes = append([]domain.Flash(nil), sess.Flashes...)
	return &clone, nil
}

func (s *stubSessionStore) Save(_ context.Context, sess *domain.Session, _ time.Duration) error {
	s.saves++
	clone := *sess
	clone.Flashes = append([]domain.Flash(nil), sess.Flashes...)
	s.byID[sess.ID] = &clone
	return nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.deletes++
	delete(s.byID, id)
	return nil
}
