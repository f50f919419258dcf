package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/todoboard/task-tracker/internal/api/metrics"
	"github.com/todoboard/task-tracker/internal/api/web"
	"github.com/todoboard/task-tracker/internal/core/domain"
	"github.com/todoboard/task-tracker/internal/core/ports"
)

// Notices shown by the auth pages.
const (
	msgEmailNotFound  = "Email address not found."
	msgWrongPassword  = "Incorrect password."
	msgEmailTaken     = "That email address is already registered. Please log in."
	msgLoggedIn       = "Logged in."
	msgLoggedOut      = "Logged out."
	msgRegisteredFmt  = "Welcome, %s. Your account was created."
	titleLogin        = "Log in"
	titleRegistration = "Register"
)

type AuthHandler struct {
	authService ports.AuthService
	sessions    *Sessions
	logger      zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, sessions *Sessions, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, logger: logger}
}

// LoginPage renders the login form.
//
// @Summary      Login form
// @Tags         auth
// @Produce      html
// @Success      200
// @Router       /login [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return h.sessions.render(c, http.StatusOK, web.PageLogin, &loginPage{Base: web.Base{Title: titleLogin}})
}

// Login authenticates the user. The "register" button sends the browser to
// the registration form instead.
//
// @Summary      Log in
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        email     formData  string  true   "Email address"
// @Param        password  formData  string  true   "Password"
// @Param        register  formData  string  false  "Present to go to the registration form"
// @Success      302
// @Failure      422
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if form.Register != "" {
		return c.Redirect(http.StatusFound, "/register")
	}

	if err := c.Validate(&form); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return h.loginFormError(c, form, err)
	}

	user, err := h.authService.Login(c.Request().Context(), form.Email, form.Password)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound):
		metrics.LoginsTotal.WithLabelValues("unknown_email").Inc()
		return h.sessions.redirectWith(c, "/login", domain.FlashError, msgEmailNotFound)
	case errors.Is(err, domain.ErrPasswordMismatch):
		metrics.LoginsTotal.WithLabelValues("wrong_password").Inc()
		return h.sessions.redirectWith(c, "/login", domain.FlashError, msgWrongPassword)
	default:
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			metrics.LoginsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
			return h.loginFormError(c, form, err)
		}
		metrics.LoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}

	if err := h.sessions.login(c, user); err != nil {
		return err
	}
	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	h.logger.Info().Int64("user_id", user.ID).Msg("user logged in")
	return h.sessions.redirectWith(c, "/", domain.FlashSuccess, msgLoggedIn)
}

func (h *AuthHandler) loginFormError(c echo.Context, form loginForm, err error) error {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return h.sessions.render(c, http.StatusUnprocessableEntity, web.PageLogin, &loginPage{
		Base:   web.Base{Title: titleLogin},
		Email:  form.Email,
		Errors: ve.Fields,
	})
}

// RegisterPage renders the registration form.
//
// @Summary      Registration form
// @Tags         auth
// @Produce      html
// @Success      200
// @Router       /register [get]
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return h.sessions.render(c, http.StatusOK, web.PageRegister, &registerPage{Base: web.Base{Title: titleRegistration}})
}

// Register creates an account and logs it in. A taken email sends the user
// to the login page with a notice.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      html
// @Param        email     formData  string  true  "Email address"
// @Param        password  formData  string  true  "Password"
// @Param        name      formData  string  true  "Display name"
// @Success      302
// @Failure      422
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	if err := c.Validate(&form); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
		return h.registerFormError(c, form, err)
	}

	user, err := h.authService.Register(c.Request().Context(), form.Email, form.Password, form.Name)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return h.sessions.redirectWith(c, "/login", domain.FlashInfo, msgEmailTaken)
		}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			metrics.RegistrationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
			return h.registerFormError(c, form, err)
		}
		metrics.RegistrationsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}

	if err := h.sessions.login(c, user); err != nil {
		return err
	}
	metrics.RegistrationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return h.sessions.redirectWith(c, "/", domain.FlashSuccess, fmt.Sprintf(msgRegisteredFmt, user.Name))
}

func (h *AuthHandler) registerFormError(c echo.Context, form registerForm, err error) error {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return h.sessions.render(c, http.StatusUnprocessableEntity, web.PageRegister, &registerPage{
		Base:   web.Base{Title: titleRegistration},
		Email:  form.Email,
		Name:   form.Name,
		Errors: ve.Fields,
	})
}

// Logout returns the session to anonymous and goes back to the login page.
//
// @Summary      Log out
// @Tags         auth
// @Success      302
// @Router       /logout [get]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.sessions.logout(c); err != nil {
		return err
	}
	return h.sessions.redirectWith(c, "/login", domain.FlashInfo, msgLoggedOut)
}
