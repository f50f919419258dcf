package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/task-tracker/internal/api/middleware"
	"github.com/todoboard/task-tracker/internal/api/web"
	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

// Sessions bundles the session manager and cookie settings the handlers use
// to log users in and out, queue flashes and render pages.
type Sessions struct {
	manager ports.SessionManager
	cookie  middleware.SessionCookie
}

func NewSessions(manager ports.SessionManager, cookie middleware.SessionCookie) *Sessions {
	return &Sessions{manager: manager, cookie: cookie}
}

// flash queues a notice for the next page, issuing a cookie when this is the
// first thing the browser stores.
func (s *Sessions) flash(c echo.Context, category, msg string) error {
	sess, token, err := s.manager.AddFlash(c.Request().Context(), middleware.CurrentSession(c),
		domain.Flash{Category: category, Message: msg})
	if err != nil {
		return err
	}
	if token != "" {
		s.cookie.Set(c, token)
	}
	middleware.SetSession(c, sess)
	return nil
}

// login authenticates the request's session as user.
func (s *Sessions) login(c echo.Context, user *domain.User) error {
	sess, token, err := s.manager.Login(c.Request().Context(), middleware.CurrentSession(c), user)
	if err != nil {
		return err
	}
	s.cookie.Set(c, token)
	middleware.SetSession(c, sess)
	middleware.SetActor(c, &domain.Actor{User: user})
	return nil
}

func (s *Sessions) logout(c echo.Context) error {
	if err := s.manager.Logout(c.Request().Context(), middleware.CurrentSession(c)); err != nil {
		return err
	}
	middleware.SetActor(c, &domain.Actor{})
	return nil
}

// render fills the page frame with the current user and pending flashes,
// which are consumed, and renders name.
func (s *Sessions) render(c echo.Context, code int, name string, page web.Page) error {
	base := page.Frame()
	base.User = middleware.CurrentActor(c).User

	flashes, err := s.manager.PopFlashes(c.Request().Context(), middleware.CurrentSession(c))
	if err != nil {
		return err
	}
	base.Flashes = flashes
	return c.Render(code, name, page)
}

// redirectWith queues a flash and redirects to path.
func (s *Sessions) redirectWith(c echo.Context, path, category, msg string) error {
	if err := s.flash(c, category, msg); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, path)
}

// pathID parses the :id route parameter. Non-numeric ids do not name a task.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrTaskNotFound
	}
	return id, nil
}
