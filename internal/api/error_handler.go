package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/todoboard/task-tracker/internal/api/handler"
	"github.com/todoboard/task-tracker/internal/api/web"
	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/pkg/logger"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Redirects unauthenticated requests to the login page.
//   - Maps known domain errors to their HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the HTML error page.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrUnauthenticated) {
			_ = c.Redirect(http.StatusFound, "/login")
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}

		code, page := handler.ErrorPage(c, code, msg)
		if rerr := c.Render(code, web.PageError, page); rerr != nil {
			log.Error().Err(rerr).Msg("failed to render error page")
			_ = c.String(code, http.StatusText(code))
		}
	}
}

// resolveError returns the status and the description shown on the page. An
// empty description falls back to the generic text of the status.
func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("http error")
			return he.Code, ""
		}
		if msg, ok := he.Message.(string); ok && msg != http.StatusText(he.Code) {
			return he.Code, msg
		}
		return he.Code, ""
	}

	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, ve.Error()
	case errors.Is(err, domain.ErrSessionInvalid):
		return http.StatusNotFound, "Your session is no longer valid.\nPlease log in again."
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "The requested task does not exist."
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ""
	}

	// Unexpected error: log the real cause, return a generic message.
	logger.FromContext(c.Request().Context(), &log).Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("cause", fmt.Sprintf("%T", err)).
		Msg("unhandled error")

	return http.StatusInternalServerError, ""
}
