package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/ops"
	"github.com/hpungsan/bromo/internal/schedule"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "sheet", "workouts", "log"
}

// SheetPageData is the template data for a rendered workout sheet.
type SheetPageData struct {
	PageData
	Schedule     schedule.Schedule
	Week         string
	RenderedHTML template.HTML
}

// WorkoutsPageData is the template data for the template list.
type WorkoutsPageData struct {
	PageData
	Workouts []ops.WorkoutSummary
	Today    *schedule.Day
}

// LogPageData is the template data for the exercise log.
type LogPageData struct {
	PageData
	Items      []ops.LogItem
	Pagination ops.Pagination
	Exercise   string
	Deleted    bool
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	markdown  goldmark.Markdown
	version   string
	logger    *slog.Logger
}

// NewRenderer parses the layout and every page template from templateFS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"formatTime": formatTime,
	}

	layout := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"sheet":    "sheet.html",
		"workouts": "workouts.html",
		"log":      "log.html",
		"error":    "error.html",
	}
	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layout.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.Table)),
		version:   version,
		logger:    logger,
	}
}

func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given status.
func (r *Renderer) renderPage(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", "name", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders err as JSON for API clients and as a page otherwise.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	be, ok := errors.As(err)
	if !ok {
		be = errors.NewInternal(err)
	}
	message := be.Message
	if be.Code == errors.ErrInternal {
		r.logger.Error("request failed", "path", req.URL.Path, "error", err)
		message = "internal server error"
	}

	if wantsJSON(req) {
		renderJSON(w, be.Status, map[string]any{
			"error": map[string]any{
				"code":    string(be.Code),
				"message": message,
				"status":  be.Status,
			},
		})
		return
	}

	r.renderPage(w, be.Status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", be.Status), ""),
		StatusCode: be.Status,
		Message:    message,
	})
}

// renderMarkdown converts markdown to HTML, falling back to escaped text.
func (r *Renderer) renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(md), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(md) + "</pre>")
	}
	return template.HTML(buf.String())
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
