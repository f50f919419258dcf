package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestErrorPage_NormalisesCode(t *testing.T) {
	e := newTestEcho()
	c, _ := newPageContext(e, formRequest(http.MethodGet, "/", nil), nil, nil)

	tests := []struct {
		in, want int
	}{
		{http.StatusNotFound, http.StatusNotFound},
		{http.StatusTeapot, http.StatusTeapot},
		{http.StatusOK, http.StatusInternalServerError},
		{302, http.StatusInternalServerError},
		{499, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		code, page := ErrorPage(c, tt.in, "")
		if code != tt.want || page.Code != tt.want {
			t.Errorf("ErrorPage(%d): got %d, want %d", tt.in, code, tt.want)
		}
		if page.Name != http.StatusText(tt.want) {
			t.Errorf("ErrorPage(%d): unexpected name %q", tt.in, page.Name)
		}
	}
}

func TestErrorPage_Description(t *testing.T) {
	e := newTestEcho()
	c, _ := newPageContext(e, formRequest(http.MethodGet, "/", nil), alice, nil)

	_, page := ErrorPage(c, http.StatusNotFound, "")
	if !strings.Contains(string(page.Description), "<br>") {
		t.Fatalf("expected multi-line description, got %q", page.Description)
	}
	if page.User == nil || page.User.Name != "Alice" {
		t.Fatal("expected current user in the frame")
	}

	_, page = ErrorPage(c, http.StatusNotFound, "No <b>task</b>.")
	if string(page.Description) != "No &lt;b&gt;task&lt;/b&gt;." {
		t.Fatalf("custom description must be escaped, got %q", page.Description)
	}

	_, page = ErrorPage(c, http.StatusTeapot, "")
	if string(page.Description) != "I&#39;m a teapot." {
		t.Fatalf("expected status text fallback, got %q", page.Description)
	}
}

func TestShowError(t *testing.T) {
	e := newTestEcho()

	c, rec := newPageContext(e, formRequest(http.MethodGet, "/404", nil), nil, nil)
	c.SetParamNames("code")
	c.SetParamValues("404")
	if err := ShowError(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "Not Found") {
		t.Fatalf("expected 404 page, got %d", rec.Code)
	}

	c, _ = newPageContext(e, formRequest(http.MethodGet, "/favicon.ico", nil), nil, nil)
	c.SetParamNames("code")
	c.SetParamValues("favicon.ico")
	if err := ShowError(c); err == nil {
		t.Fatal("expected not found for a non-numeric code")
	}
}
