package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/task-tracker/internal/api/middleware"
	"github.com/todoboard/task-tracker/internal/api/web"
)

var statusDescriptions = map[int]string{
	http.StatusBadRequest:          "The browser sent a request that this server could not understand.",
	http.StatusUnauthorized:        "You are not logged in.\nLog in and try again.",
	http.StatusForbidden:           "You don't have the permission to access the requested resource.",
	http.StatusNotFound:            "The requested URL was not found on the server.\nIf you entered the URL manually please check your spelling and try again.",
	http.StatusMethodNotAllowed:    "The method is not allowed for the requested URL.",
	http.StatusUnprocessableEntity: "The request was well-formed but was unable to be followed due to semantic errors.",
	http.StatusInternalServerError: "The server encountered an internal error and was unable to complete your request.",
	http.StatusServiceUnavailable:  "The server is temporarily unable to service your request.\nPlease try again later.",
}

// ErrorPage builds the data of the error template for code. Codes that are
// not HTTP error statuses become 500.
func ErrorPage(c echo.Context, code int, description string) (int, *web.ErrorPage) {
	if code < 400 || http.StatusText(code) == "" {
		code = http.StatusInternalServerError
	}
	if description == "" {
		description = statusDescriptions[code]
	}
	if description == "" {
		description = http.StatusText(code) + "."
	}

	name := http.StatusText(code)
	return code, &web.ErrorPage{
		Base:        web.Base{Title: name, User: middleware.CurrentActor(c).User},
		Code:        code,
		Name:        name,
		Description: web.ErrorDescription(description),
	}
}

// ShowError renders the error page named by the :code path segment.
//
// @Summary      Error page
// @Tags         pages
// @Produce      html
// @Param        code  path  integer  true  "HTTP status code"
// @Success      200
// @Router       /{code} [get]
func ShowError(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		return echo.ErrNotFound
	}
	code, page := ErrorPage(c, n, "")
	return c.Render(code, web.PageError, page)
}
