package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

// stubManager resolves every token to the configured result.
type stubManager struct {
	user      *domain.User
	resolveFn func(token string) (*domain.Session, *domain.Actor, error)
	destroyed bool
}

func (m *stubManager) Resolve(_ context.Context, token string) (*domain.Session, *domain.Actor, error) {
	if m.resolveFn != nil {
		return m.resolveFn(token)
	}
	if m.user != nil && token != "" {
		return &domain.Session{ID: "s1", UserID: m.user.ID}, &domain.Actor{User: m.user}, nil
	}
	return nil, &domain.Actor{}, nil
}

func (m *stubManager) Login(_ context.Context, _ *domain.Session, user *domain.User) (*domain.Session, string, error) {
	return &domain.Session{ID: "s2", UserID: user.ID}, "tok", nil
}

func (m *stubManager) Logout(context.Context, *domain.Session) error { return nil }

func (m *stubManager) Destroy(context.Context, *domain.Session) error {
	m.destroyed = true
	return nil
}

func (m *stubManager) AddFlash(_ context.Context, s *domain.Session, f domain.Flash) (*domain.Session, string, error) {
	if s == nil {
		return &domain.Session{ID: "s3", Flashes: []domain.Flash{f}}, "tok", nil
	}
	s.Flashes = append(s.Flashes, f)
	return s, "", nil
}

func (m *stubManager) PopFlashes(context.Context, *domain.Session) ([]domain.Flash, error) {
	return nil, nil
}

func (m *stubManager) TTL() time.Duration { return time.Hour }

type emptyTasks struct{ ports.TaskService }

func (emptyTasks) ListTasks(context.Context, *domain.Actor, ports.ListQuery) (*ports.TaskList, error) {
	return &ports.TaskList{Label: "Task list", Kind: domain.FilterIncomplete}, nil
}

func newTestRouter(m *stubManager) *echo.Echo {
	reg := prometheus.NewRegistry()
	return NewRouter(Dependencies{
		Tasks:      emptyTasks{},
		Sessions:   m,
		Logger:     zerolog.Nop(),
		Registerer: reg,
		Gatherer:   reg,
	})
}

func serve(e *echo.Echo, method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	e := newTestRouter(&stubManager{})

	if rec := serve(e, http.MethodGet, "/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("/health: expected 200, got %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/health/ready", nil); rec.Code != http.StatusOK {
		t.Fatalf("/health/ready: expected 200 without dependencies, got %d", rec.Code)
	}

	serve(e, http.MethodGet, "/login", nil)
	rec := serve(e, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "_requests_total") {
		t.Fatalf("/metrics: expected HTTP metrics, got %d", rec.Code)
	}
}

func TestRouter_AnonymousIsSentToLogin(t *testing.T) {
	e := newTestRouter(&stubManager{})

	for _, path := range []string{"/", "/create", "/edit/1", "/delete/1", "/complete/1", "/logout"} {
		rec := serve(e, http.MethodGet, path, nil)
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
			t.Errorf("%s: expected redirect to /login, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}

	rec := serve(e, http.MethodGet, "/login", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="password"`) {
		t.Fatalf("/login: expected the login form, got %d", rec.Code)
	}
}

func TestRouter_LoggedInSeesTaskList(t *testing.T) {
	e := newTestRouter(&stubManager{user: &domain.User{ID: 1, Name: "Alice"}})

	rec := serve(e, http.MethodGet, "/", &http.Cookie{Name: sessionCookieName, Value: "tok"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Task list") || !strings.Contains(body, "Alice") {
		t.Fatalf("unexpected page:\n%s", body)
	}
}

func TestRouter_ErrorPages(t *testing.T) {
	e := newTestRouter(&stubManager{})

	rec := serve(e, http.MethodGet, "/404", nil)
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Not Found") {
		t.Fatalf("/404: expected error page, got %d", rec.Code)
	}

	rec = serve(e, http.MethodGet, "/no/such/page", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path: expected 404, got %d", rec.Code)
	}
}

func TestRouter_InvalidSessionIsDestroyed(t *testing.T) {
	m := &stubManager{
		resolveFn: func(string) (*domain.Session, *domain.Actor, error) {
			return &domain.Session{ID: "s1", UserID: 7}, &domain.Actor{}, domain.ErrSessionInvalid
		},
	}
	e := newTestRouter(m)

	rec := serve(e, http.MethodGet, "/", &http.Cookie{Name: sessionCookieName, Value: "tok"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !m.destroyed {
		t.Fatal("expected the session to be destroyed")
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("expected the cookie to be cleared, got %q", rec.Header().Get("Set-Cookie"))
	}
}
