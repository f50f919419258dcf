// Package web holds the embedded HTML templates and the echo.Renderer that
// serves them. Every page template defines "content" and is rendered inside
// the shared "layout".
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/todoboard/task-tracker/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageLogin    = "login"
	PageRegister = "register"
	PageIndex    = "index"
	PageTask     = "task"
	PageDelete   = "delete"
	PageError    = "error"
)

var pageNames = []string{PageLogin, PageRegister, PageIndex, PageTask, PageDelete, PageError}

// Base is embedded by every page's data.
type Base struct {
	Title   string
	User    *domain.User
	Flashes []domain.Flash
}

// Frame gives renderers access to the embedded Base.
func (b *Base) Frame() *Base { return b }

// Page is any value that embeds Base.
type Page interface {
	Frame() *Base
}

// ErrorPage is the data of the error template.
type ErrorPage struct {
	Base
	Code        int
	Name        string
	Description template.HTML
}

// ErrorDescription escapes s for HTML and turns newlines into <br>.
func ErrorDescription(s string) template.HTML {
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(domain.DateLayout)
	},
	"overdue": func(t *domain.Task, today time.Time) bool {
		return t.Overdue(today)
	},
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustRenderer is NewRenderer for program start-up and tests.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
