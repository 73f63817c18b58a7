package web

import (
	"database/sql"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/ops"
	"github.com/hpungsan/bromo/internal/remote"
	"github.com/hpungsan/bromo/internal/schedule"
)

const maxRequestBody = 64 * 1024

// Handlers contains HTTP route handlers for the web UI and generate API.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	builder  *schedule.Builder
	renderer *Renderer
	logger   *slog.Logger
}

// HandleGenerate handles POST /generate. The body is a remote.Request and the
// response is the schedule as a JSON list of remote.Exercise.
func (h *Handlers) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req remote.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid JSON body: "+err.Error()))
		return
	}
	if strings.TrimSpace(req.Workout) == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("workout is required"))
		return
	}

	out, err := ops.Generate(r.Context(), h.db, h.cfg, h.builder, generateInput(req.Workout, req.Week, nil))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	h.logger.Debug("generated schedule", "workout", out.Schedule.Workout, "exercises", len(out.Schedule.Exercises))
	renderJSON(w, http.StatusOK, remote.FromSchedule(out.Schedule))
}

// HandleWorkouts handles GET /workouts. JSON clients get the template names.
func (h *Handlers) HandleWorkouts(w http.ResponseWriter, r *http.Request) {
	c := h.builder.Engine().Catalog()
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, c.WorkoutNames())
		return
	}

	data := WorkoutsPageData{
		PageData: h.renderer.page("Workouts", "workouts"),
		Workouts: ops.Workouts(c).Workouts,
	}
	if day, err := ops.Today(h.cfg, nil); err == nil {
		data.Today = &day
	}
	h.renderer.renderPage(w, http.StatusOK, "workouts", data)
}

// HandleSheet handles GET /sheet, rendering a freshly generated schedule.
// Without ?workout= the rotation day decides the template.
func (h *Handlers) HandleSheet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	workout := strings.TrimSpace(q.Get("workout"))
	week := strings.TrimSpace(q.Get("week"))

	out, err := ops.Generate(r.Context(), h.db, h.cfg, h.builder, generateInput(workout, week, splitList(q["exclude"])))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	h.renderer.renderPage(w, http.StatusOK, "sheet", SheetPageData{
		PageData:     h.renderer.page(out.Schedule.Workout, "sheet"),
		Schedule:     out.Schedule,
		Week:         week,
		RenderedHTML: h.renderer.renderMarkdown(out.Schedule.Markdown()),
	})
}

// HandleLog handles GET /log, the exercise log newest first.
func (h *Handlers) HandleLog(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	input := ops.LogListInput{
		Exercise:       exercise,
		Limit:          parseIntParam(r, "limit", 20),
		Offset:         parseIntParam(r, "offset", 0),
		IncludeDeleted: parseBoolParam(r, "include_deleted"),
	}

	result, err := ops.LogList(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	h.renderer.renderPage(w, http.StatusOK, "log", LogPageData{
		PageData:   h.renderer.page("Log", "log"),
		Items:      result.Items,
		Pagination: result.Pagination,
		Exercise:   exercise,
		Deleted:    input.IncludeDeleted,
	})
}

// HandleLogDelete handles DELETE /log/{id}.
func (h *Handlers) HandleLogDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.LogDelete(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/log")
		w.WriteHeader(http.StatusOK)
		return
	}
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/log", http.StatusFound)
}

// HandleLogPurge handles POST /log/purge, which permanently removes
// soft-deleted entries. The form must carry confirm=true.
func (h *Handlers) HandleLogPurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	var input ops.PurgeInput
	if days := r.FormValue("older_than_days"); days != "" {
		d, err := strconv.Atoi(days)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("older_than_days must be an integer"))
			return
		}
		input.OlderThanDays = &d
	}

	result, err := ops.Purge(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="purge-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/log?include_deleted=true", http.StatusFound)
}

// generateInput maps the web form of a request onto ops.GenerateInput.
// "Upper Push" plus "Strength" names a template; a workout without a week is
// taken as a full template name; no workout falls back to the rotation.
func generateInput(workout, week string, exclude []string) ops.GenerateInput {
	workout = strings.TrimSpace(workout)
	week = strings.TrimSpace(week)
	switch {
	case workout != "" && week != "":
		return ops.GenerateInput{Workout: workout + " " + week, Exclude: exclude}
	case workout != "":
		return ops.GenerateInput{Workout: workout, Exclude: exclude}
	default:
		return ops.GenerateInput{Week: week, Exclude: exclude}
	}
}

// splitList flattens repeated and comma-separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}
