package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireLogin redirects anonymous callers to loginPath without running the
// handler.
func RequireLogin(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !CurrentActor(c).Authenticated() {
				return c.Redirect(http.StatusFound, loginPath)
			}
			return next(c)
		}
	}
}
