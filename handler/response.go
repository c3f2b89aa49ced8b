package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
)

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	b, err := json.Marshal(j.body)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	_, err = w.Write(append(b, '\n'))
	return err
}

// JSON encodes v with the given status.
func JSON(status int, v any) Response {
	return jsonResponse{status: status, body: v}
}

type redirectResponse struct {
	url    string
	status int
}

func (rr redirectResponse) Render(w http.ResponseWriter, r *http.Request) error {
	http.Redirect(w, r, rr.url, rr.status)
	return nil
}

// Redirect answers 302 Found.
func Redirect(url string) Response {
	return redirectResponse{url: url, status: http.StatusFound}
}

// RedirectSeeOther answers 303, for redirects after a POST that must switch
// the method to GET.
func RedirectSeeOther(url string) Response {
	return redirectResponse{url: url, status: http.StatusSeeOther}
}

type templResponse struct {
	component templ.Component
	status    int
}

func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	var buf bytes.Buffer
	if err := t.component.Render(r.Context(), &buf); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(t.status)
	_, err := buf.WriteTo(w)
	return err
}

// Templ renders component as HTML with status 200. The component is rendered
// into a buffer first, so a failing component leaves the response untouched.
func Templ(component templ.Component) Response {
	return templResponse{component: component, status: http.StatusOK}
}

// TemplStatus is Templ with an explicit status, e.g. 422 for a form
// re-rendered with validation errors.
func TemplStatus(status int, component templ.Component) Response {
	return templResponse{component: component, status: status}
}

type textResponse struct {
	status int
	body   string
}

func (t textResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(t.status)
	_, err := w.Write([]byte(t.body))
	return err
}

func Text(status int, body string) Response {
	return textResponse{status: status, body: body}
}

// Error hands err to the error handler instead of rendering.
func Error(err error) Response {
	return errorResponse{err: err}
}

type errorResponse struct{ err error }

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }
