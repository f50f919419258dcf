package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

const (
	sessionKey = "session"
	actorKey   = "actor"
)

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Set writes token into the response cookie.
func (sc SessionCookie) Set(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     sc.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sc.TTL.Seconds()),
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the cookie in the browser.
func (sc SessionCookie) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session resolves the cookie token and injects the session and actor into
// the context. A session whose user vanished is destroyed, the cookie cleared
// and domain.ErrSessionInvalid returned for the error handler.
func Session(manager ports.SessionManager, cookie SessionCookie, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var token string
			if ck, err := c.Cookie(cookie.Name); err == nil {
				token = ck.Value
			}

			sess, actor, err := manager.Resolve(ctx, token)
			if err != nil {
				if errors.Is(err, domain.ErrSessionInvalid) {
					if derr := manager.Destroy(ctx, sess); derr != nil {
						log.Warn().Err(derr).Msg("failed to destroy invalid session")
					}
					cookie.Clear(c)
					c.Set(actorKey, &domain.Actor{})
				}
				return err
			}

			if sess == nil && token != "" {
				cookie.Clear(c)
			}

			SetSession(c, sess)
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// CurrentActor returns the actor injected by Session, or an anonymous one.
func CurrentActor(c echo.Context) *domain.Actor {
	if a, ok := c.Get(actorKey).(*domain.Actor); ok && a != nil {
		return a
	}
	return &domain.Actor{}
}

// SetActor replaces the request's actor, e.g. right after login.
func SetActor(c echo.Context, a *domain.Actor) {
	c.Set(actorKey, a)
}

// CurrentSession returns the request's session, nil when there is none yet.
func CurrentSession(c echo.Context) *domain.Session {
	s, _ := c.Get(sessionKey).(*domain.Session)
	return s
}

// SetSession replaces the request's session after it was created or rotated.
func SetSession(c echo.Context, s *domain.Session) {
	c.Set(sessionKey, s)
}
