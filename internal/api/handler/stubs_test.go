package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/task-tracker/internal/api/middleware"
	"github.com/todoboard/task-tracker/internal/api/web"
	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Service stubs
// ---------------------------------------------------------------------------

type stubAuthService struct {
	registerFn func(ctx context.Context, email, password, name string) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.registerFn(ctx, email, password, name)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	return s.loginFn(ctx, email, password)
}

type stubTaskService struct {
	listFn     func(q ports.ListQuery) (*ports.TaskList, error)
	getFn      func(id int64) (*domain.Task, error)
	createFn   func(in ports.TaskInput) (*ports.TaskResult, error)
	editFn     func(id int64, in ports.TaskInput) (*ports.TaskResult, error)
	completeFn func(id int64) (*domain.Task, error)
	deleteFn   func(id int64, confirm bool) (*ports.TaskResult, error)
	users      []*domain.User
}

func (s *stubTaskService) ListTasks(_ context.Context, _ *domain.Actor, q ports.ListQuery) (*ports.TaskList, error) {
	return s.listFn(q)
}

func (s *stubTaskService) GetTask(_ context.Context, _ *domain.Actor, id int64) (*domain.Task, error) {
	return s.getFn(id)
}

func (s *stubTaskService) Assignees(context.Context, *domain.Actor) ([]*domain.User, error) {
	return s.users, nil
}

func (s *stubTaskService) CreateTask(_ context.Context, _ *domain.Actor, in ports.TaskInput) (*ports.TaskResult, error) {
	return s.createFn(in)
}

func (s *stubTaskService) EditTask(_ context.Context, _ *domain.Actor, id int64, in ports.TaskInput) (*ports.TaskResult, error) {
	return s.editFn(id, in)
}

func (s *stubTaskService) CompleteTask(_ context.Context, _ *domain.Actor, id int64) (*domain.Task, error) {
	return s.completeFn(id)
}

func (s *stubTaskService) PrepareDelete(_ context.Context, _ *domain.Actor, id int64) (*domain.Task, error) {
	return s.getFn(id)
}

func (s *stubTaskService) DeleteTask(_ context.Context, _ *domain.Actor, id int64, confirm bool) (*ports.TaskResult, error) {
	return s.deleteFn(id, confirm)
}

// stubSessions keeps flashes on the session value it is handed.
type stubSessions struct {
	flashes   []domain.Flash
	loggedIn  *domain.User
	loggedOut bool
}

func (m *stubSessions) Resolve(context.Context, string) (*domain.Session, *domain.Actor, error) {
	return nil, &domain.Actor{}, nil
}

func (m *stubSessions) Login(_ context.Context, s *domain.Session, user *domain.User) (*domain.Session, string, error) {
	m.loggedIn = user
	next := &domain.Session{ID: "authenticated", UserID: user.ID}
	if s != nil {
		next.Flashes = s.Flashes
	}
	return next, "tok-auth", nil
}

func (m *stubSessions) Logout(_ context.Context, s *domain.Session) error {
	m.loggedOut = true
	if s != nil {
		s.UserID = 0
	}
	return nil
}

func (m *stubSessions) Destroy(context.Context, *domain.Session) error { return nil }

func (m *stubSessions) AddFlash(_ context.Context, s *domain.Session, f domain.Flash) (*domain.Session, string, error) {
	var token string
	if s == nil {
		s = &domain.Session{ID: "fresh"}
		token = "tok-fresh"
	}
	s.Flashes = append(s.Flashes, f)
	m.flashes = append(m.flashes, f)
	return s, token, nil
}

func (m *stubSessions) PopFlashes(_ context.Context, s *domain.Session) ([]domain.Flash, error) {
	if s == nil {
		return nil, nil
	}
	out := s.Flashes
	s.Flashes = nil
	return out, nil
}

func (m *stubSessions) TTL() time.Duration { return time.Hour }

func (m *stubSessions) lastFlash() domain.Flash {
	if len(m.flashes) == 0 {
		return domain.Flash{}
	}
	return m.flashes[len(m.flashes)-1]
}

// ---------------------------------------------------------------------------
// Request helpers
// ---------------------------------------------------------------------------

var (
	alice = &domain.User{ID: 1, Email: "a@x.com", Name: "Alice"}
	bob   = &domain.User{ID: 2, Email: "b@x.com", Name: "Bob"}
)

var testCookie = middleware.SessionCookie{Name: "sid", TTL: time.Hour}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Renderer = web.MustRenderer()
	e.Validator = NewValidator()
	return e
}

func formRequest(method, target string, form url.Values) *http.Request {
	var body *strings.Reader
	if form == nil {
		body = strings.NewReader("")
	} else {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if method == http.MethodPost {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	return req
}

// newPageContext builds a context as the session middleware would leave it.
func newPageContext(e *echo.Echo, req *http.Request, user *domain.User, sess *domain.Session) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetActor(c, &domain.Actor{User: user})
	middleware.SetSession(c, sess)
	return c, rec
}

func withID(c echo.Context, path, id string) {
	c.SetPath(path)
	c.SetParamNames("id")
	c.SetParamValues(id)
}
