package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/bromo/internal/catalog"
	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/db"
	"github.com/hpungsan/bromo/internal/ops"
	"github.com/hpungsan/bromo/internal/picker"
	"github.com/hpungsan/bromo/internal/schedule"
)

// setupEnv creates a temporary database and a seeded builder for testing.
func setupEnv(t *testing.T) *env {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	c, err := catalog.Default()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	logger := slog.New(slog.DiscardHandler)
	eng := picker.NewEngine(c, picker.WithRand(rand.New(rand.NewPCG(1, 2))))

	return &env{
		db:      database,
		cfg:     config.DefaultConfig(),
		builder: schedule.NewBuilder(eng, logger),
		logger:  logger,
	}
}

// runCLI runs the app with args, feeding stdin, and returns stdout.
func runCLI(t *testing.T, e *env, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newCLIApp(e)
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.Reader = strings.NewReader(stdin)
	err := app.Run(append([]string{"bromo"}, args...))
	return out.String(), err
}

func mustRun(t *testing.T, e *env, stdin string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, e, stdin, args...)
	if err != nil {
		t.Fatalf("bromo %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func decode(t *testing.T, s string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatalf("failed to parse output: %v\n%s", err, s)
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single word", input: "barbell", expected: []string{"barbell"}},
		{name: "with spaces", input: " barbell , good morning ", expected: []string{"barbell", "good morning"}},
		{name: "blanks filtered", input: "curl,,row,", expected: []string{"curl", "row"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseList(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("expected %d words, got %d", len(tt.expected), len(result))
			}
			for i, w := range result {
				if w != tt.expected[i] {
					t.Errorf("expected word[%d]=%q, got %q", i, tt.expected[i], w)
				}
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input       string
		expected    int
		expectError bool
	}{
		{input: "7d", expected: 7},
		{input: "0d", expected: 0},
		{input: "7", expectError: true},
		{input: "xd", expectError: true},
		{input: "-1d", expectError: true},
	}

	for _, tt := range tests {
		got, err := parseDuration(tt.input)
		if tt.expectError {
			if err == nil {
				t.Errorf("parseDuration(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil || got != tt.expected {
			t.Errorf("parseDuration(%q) = %d, %v; want %d", tt.input, got, err, tt.expected)
		}
	}
}

func TestParseDate(t *testing.T) {
	if d, err := parseDate("date", ""); d != nil || err != nil {
		t.Errorf("empty date = %v, %v; want nil, nil", d, err)
	}
	d, err := parseDate("date", "2020-12-21")
	if err != nil || d.Day() != 21 {
		t.Errorf("parseDate(2020-12-21) = %v, %v", d, err)
	}
	if _, err := parseDate("date", "2020-12-21T08:30:00Z"); err != nil {
		t.Errorf("RFC3339: %v", err)
	}
	if _, err := parseDate("since", "yesterday"); err == nil || !strings.Contains(err.Error(), "since") {
		t.Errorf("expected error naming the field, got %v", err)
	}
}

func TestCLIHelpWithoutEnv(t *testing.T) {
	out, err := runCLI(t, nil, "", "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, cmd := range []string{"generate", "resample", "log", "filter", "remote", "serve"} {
		if !strings.Contains(out, cmd) {
			t.Errorf("help should list %q", cmd)
		}
	}
}

func TestCLIGenerate(t *testing.T) {
	e := setupEnv(t)

	var out ops.GenerateOutput
	decode(t, mustRun(t, e, "", "generate", "--workout", "Upper Push Strength"), &out)

	if out.Schedule.Workout != "Upper Push Strength" {
		t.Errorf("workout = %q", out.Schedule.Workout)
	}
	if len(out.Schedule.Exercises) != 5 {
		t.Fatalf("expected 5 exercises, got %d", len(out.Schedule.Exercises))
	}
	if out.Schedule.Exercises[0].SlotID != "Primary" || out.Schedule.Exercises[0].SetsAndReps != "5x5" {
		t.Errorf("first exercise = %+v", out.Schedule.Exercises[0])
	}
}

func TestCLIGenerate_FromParts(t *testing.T) {
	e := setupEnv(t)

	var out ops.GenerateOutput
	decode(t, mustRun(t, e, "", "generate", "--date", "2020-12-21", "--body-group", "Upper", "--direction", "Pull"), &out)

	if out.Schedule.Workout != "Upper Pull Strength" {
		t.Errorf("workout = %q, want Upper Pull Strength", out.Schedule.Workout)
	}
}

func TestCLIGenerate_Markdown(t *testing.T) {
	e := setupEnv(t)

	out := mustRun(t, e, "", "generate", "-w", "Lower Pull Test", "--format", "markdown")
	if !strings.HasPrefix(out, "# Lower Pull Test\n") {
		t.Errorf("expected markdown heading, got:\n%s", out)
	}
	if !strings.Contains(out, "| 1 | Primary |") {
		t.Errorf("expected Primary row, got:\n%s", out)
	}
}

func TestCLIGenerate_Errors(t *testing.T) {
	e := setupEnv(t)

	tests := []struct {
		args []string
		code string
	}{
		{[]string{"generate", "--workout", "Sideways Push Test"}, "[UNKNOWN_WORKOUT]"},
		{[]string{"generate", "--workout", "Upper Push Test", "--format", "yaml"}, "[INVALID_REQUEST]"},
		{[]string{"generate", "--week", "Deload"}, "[INVALID_REQUEST]"},
		{[]string{"generate", "--date", "soon"}, "[INVALID_REQUEST]"},
	}
	for _, tt := range tests {
		_, err := runCLI(t, e, "", tt.args...)
		if err == nil || !strings.Contains(err.Error(), tt.code) {
			t.Errorf("bromo %s: err = %v, want %s", strings.Join(tt.args, " "), err, tt.code)
		}
	}
}

func TestCLIResample(t *testing.T) {
	e := setupEnv(t)

	generated := mustRun(t, e, "", "generate", "--workout", "Upper Pull Hypertrophy")

	var out ops.ResampleOutput
	decode(t, mustRun(t, e, generated, "resample", "--slot", "Core"), &out)

	if out.SlotID != "Core" {
		t.Errorf("slot = %q, want Core", out.SlotID)
	}
	if out.Previous == out.Replacement {
		t.Errorf("replacement %q equals previous", out.Replacement)
	}
	if idx := out.Schedule.Slot("Core"); idx < 0 || out.Schedule.Exercises[idx].Name != out.Replacement {
		t.Errorf("schedule not updated: %+v", out.Schedule)
	}
}

func TestCLIResample_BareScheduleAndErrors(t *testing.T) {
	e := setupEnv(t)

	bare := `{"workout":"Upper Push Recovery","exercises":[{"name":"Bench Press","sets_and_reps":"3x8","slot_id":"Primary","order":1}]}`
	var out ops.ResampleOutput
	decode(t, mustRun(t, e, bare, "resample", "--slot", "Primary"), &out)
	if out.Previous != "Bench Press" || out.Replacement == "Bench Press" {
		t.Errorf("got previous %q replacement %q", out.Previous, out.Replacement)
	}

	if _, err := runCLI(t, e, "not json", "resample", "--slot", "Primary"); err == nil || !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("invalid JSON: err = %v", err)
	}
	if _, err := runCLI(t, e, bare, "resample", "--slot", "Core"); err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
		t.Errorf("missing slot: err = %v", err)
	}
}

func TestCLIWorkoutsAndLifts(t *testing.T) {
	e := setupEnv(t)

	var workouts ops.WorkoutsOutput
	decode(t, mustRun(t, e, "", "workouts"), &workouts)
	if len(workouts.Workouts) != 16 {
		t.Errorf("expected 16 workouts, got %d", len(workouts.Workouts))
	}

	var lifts ops.LiftsOutput
	decode(t, mustRun(t, e, "", "lifts", "--category", "Core"), &lifts)
	if len(lifts.Lifts) != 7 {
		t.Errorf("expected 7 core lifts, got %d", len(lifts.Lifts))
	}
}

func TestCLIToday(t *testing.T) {
	e := setupEnv(t)

	tests := map[string]string{
		"2020-12-07": "Upper Push Recovery",
		"2020-12-08": "Lower Pull Recovery",
		"2020-12-14": "Lower Push Hypertrophy",
	}
	for date, want := range tests {
		var out map[string]string
		decode(t, mustRun(t, e, "", "today", "--date", date), &out)
		if out["workout"] != want {
			t.Errorf("today --date %s = %q, want %q", date, out["workout"], want)
		}
	}
}

func TestCLILog(t *testing.T) {
	e := setupEnv(t)

	var added ops.LogAppendOutput
	decode(t, mustRun(t, e, "", "log", "add", "-e", "Deadlift", "--sets-and-reps", "5x3", "--weight", "315", "--date", "2024-03-01"), &added)
	if added.ID == "" || added.Exercise.SetsAndReps != "5x3" {
		t.Fatalf("unexpected add output: %+v", added)
	}
	mustRun(t, e, "", "log", "add", "-e", "Chin Up", "--sets", "3", "--reps", "8")

	var list ops.LogListOutput
	decode(t, mustRun(t, e, "", "log", "list", "--exercise", "deadlift"), &list)
	if len(list.Items) != 1 || list.Items[0].Weight != 315 {
		t.Fatalf("expected the deadlift entry, got %+v", list.Items)
	}

	decode(t, mustRun(t, e, "", "log", "list", "--until", "2024-03-02"), &list)
	if list.Pagination.Total != 1 {
		t.Errorf("until filter total = %d, want 1", list.Pagination.Total)
	}

	mustRun(t, e, "", "log", "delete", added.ID)
	decode(t, mustRun(t, e, "", "log", "list"), &list)
	if list.Pagination.Total != 1 {
		t.Errorf("after delete total = %d, want 1", list.Pagination.Total)
	}

	var purged ops.PurgeOutput
	decode(t, mustRun(t, e, "", "log", "purge"), &purged)
	if purged.Purged != 1 {
		t.Errorf("purged = %d, want 1", purged.Purged)
	}

	if _, err := runCLI(t, e, "", "log", "purge", "--older-than", "week"); err == nil || !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("bad --older-than: err = %v", err)
	}
	if _, err := runCLI(t, e, "", "log", "delete", "missing"); err == nil || !strings.Contains(err.Error(), "[NOT_FOUND]") {
		t.Errorf("delete missing: err = %v", err)
	}
}

func TestCLILogExportImport(t *testing.T) {
	e := setupEnv(t)
	dir := t.TempDir()
	e.cfg.AllowedPaths = []string{dir}
	path := filepath.Join(dir, "log.jsonl")

	mustRun(t, e, "", "log", "add", "-e", "Front Squat", "--sets", "5", "--reps", "5", "--weight", "185")

	var exported ops.ExportOutput
	decode(t, mustRun(t, e, "", "log", "export", "--path", path), &exported)
	if exported.Count != 1 {
		t.Fatalf("exported %d entries, want 1", exported.Count)
	}

	// Same ids already exist, so error mode refuses and rename mode succeeds.
	var imported ops.ImportOutput
	decode(t, mustRun(t, e, "", "log", "import", "--path", path), &imported)
	if imported.Imported != 0 || len(imported.Errors) != 1 || imported.Errors[0].Code != "ID_COLLISION" {
		t.Errorf("error mode: %+v", imported)
	}
	decode(t, mustRun(t, e, "", "log", "import", "--path", path, "--mode", "rename"), &imported)
	if imported.Imported != 1 {
		t.Errorf("rename mode imported %d, want 1", imported.Imported)
	}

	var list ops.LogListOutput
	decode(t, mustRun(t, e, "", "log", "list"), &list)
	if list.Pagination.Total != 2 {
		t.Errorf("total = %d, want 2", list.Pagination.Total)
	}
}

func TestCLIFilter(t *testing.T) {
	e := setupEnv(t)
	e.cfg.FilteredWords = []string{"kettlebell"}

	var added ops.FilterAddOutput
	decode(t, mustRun(t, e, "", "filter", "add", "Good", "Morning"), &added)
	if added.Norm != "good morning" || !added.Added {
		t.Errorf("unexpected add output: %+v", added)
	}

	var list ops.FilterListOutput
	decode(t, mustRun(t, e, "", "filter", "list"), &list)
	if len(list.Stored) != 1 || len(list.Configured) != 1 {
		t.Errorf("unexpected list output: %+v", list)
	}

	mustRun(t, e, "", "filter", "remove", "GOOD MORNING")
	decode(t, mustRun(t, e, "", "filter", "list"), &list)
	if len(list.Stored) != 0 {
		t.Errorf("expected no stored words, got %+v", list.Stored)
	}

	if _, err := runCLI(t, e, "", "filter", "add"); err == nil || !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("empty word: err = %v", err)
	}
}

func TestCLIRemoteGenerate(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"Exercise":"Bench Press","Sets and Reps":"5x5","Type":"Primary"},{"Exercise":"Plank","Sets and Reps":"3x12","Type":"Core"}]`))
	}))
	defer srv.Close()

	e := setupEnv(t)
	var out ops.GenerateOutput
	decode(t, mustRun(t, e, "", "remote", "generate", "--url", srv.URL, "-w", "Upper Push", "--week", "Strength"), &out)

	if got["workout"] != "Upper Push" || got["week"] != "Strength" {
		t.Errorf("request body = %v", got)
	}
	if out.Schedule.Workout != "Upper Push Strength" || len(out.Schedule.Exercises) != 2 {
		t.Errorf("unexpected schedule: %+v", out.Schedule)
	}
}

func TestCLIRemoteGenerate_NoURL(t *testing.T) {
	e := setupEnv(t)
	_, err := runCLI(t, e, "", "remote", "generate", "-w", "Upper Push", "--week", "Strength")
	if err == nil || !strings.Contains(err.Error(), "[INVALID_REQUEST]") {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}
