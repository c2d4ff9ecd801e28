package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"movierank/internal/biz"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names, one per template file besides the base layout.
const (
	pageIndex  = "index.html"
	pageEdit   = "edit.html"
	pageAdd    = "add.html"
	pageSelect = "select.html"
	pageError  = "error.html"
)

var funcMap = template.FuncMap{
	"rating": func(r *float64) string {
		if r == nil {
			return "-"
		}
		return fmt.Sprintf("%.1f", *r)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"rank": rankText,
}

// pageData is the view model shared by every page.
type pageData struct {
	Title      string
	CSRFToken  string
	Flashes    []string
	Error      string
	Movies     []*biz.Movie
	Movie      *biz.Movie
	Candidates []*biz.Candidate
	Query      string
	ImageBase  string
	Review     string
	Rating     string
	Status     int
	Reason     string
}

// Views renders the embedded HTML templates.
type Views struct {
	pages map[string]*template.Template
	log   *log.Helper
}

// NewViews parses every page together with the base layout.
func NewViews(logger log.Logger) (*Views, error) {
	v := &Views{
		pages: make(map[string]*template.Template),
		log:   log.NewHelper(log.With(logger, "module", "views")),
	}
	for _, page := range []string{pageIndex, pageEdit, pageAdd, pageSelect, pageError} {
		tmpl, err := template.New(page).Funcs(funcMap).ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		v.pages[page] = tmpl
	}
	return v, nil
}

// Render executes page into a buffer first so a template failure never
// leaves a half-written response.
func (v *Views) Render(w http.ResponseWriter, status int, page string, data *pageData) error {
	tmpl, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// RenderError writes the error page for err using the kratos error's status.
func (v *Views) RenderError(w http.ResponseWriter, r *http.Request, err error) {
	se := errors.FromError(err)
	status := int(se.Code)
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}

	message := se.Message
	if status >= 500 && !isUpstream(err) {
		v.log.WithContext(r.Context()).Errorf("request %s %s failed: %v", r.Method, r.URL.Path, err)
		message = "Something went wrong. Please try again later."
	}

	data := &pageData{
		Title:  http.StatusText(status),
		Error:  message,
		Status: status,
		Reason: se.Reason,
	}
	if rerr := v.Render(w, status, pageError, data); rerr != nil {
		v.log.Errorf("failed to render error page: %v", rerr)
		http.Error(w, message, status)
	}
}

func isUpstream(err error) bool {
	return errors.Is(err, biz.ErrUpstream) ||
		errors.Is(err, biz.ErrUpstreamUnavailable) ||
		errors.Is(err, biz.ErrMalformedUpstreamData)
}
