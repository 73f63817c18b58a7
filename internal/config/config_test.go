package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ReferenceDate != "2020-12-07" {
		t.Errorf("ReferenceDate = %q, want 2020-12-07", cfg.ReferenceDate)
	}
	if len(cfg.Weeks) != 4 || cfg.Weeks[0] != "Recovery" {
		t.Errorf("Weeks = %v", cfg.Weeks)
	}
	if cfg.WebPort != 8765 {
		t.Errorf("WebPort = %d, want 8765", cfg.WebPort)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
		"filtered_words": ["curl", " dip "],
		"weeks": ["Base", "Peak"],
		"catalog": {"lifts_path": "/tmp/lifts.yaml"},
		"web_port": 9000
	}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.FilteredWords) != 2 || cfg.FilteredWords[1] != "dip" {
		t.Errorf("FilteredWords = %v", cfg.FilteredWords)
	}
	if len(cfg.Weeks) != 2 || cfg.Weeks[1] != "Peak" {
		t.Errorf("Weeks = %v, want [Base Peak]", cfg.Weeks)
	}
	if len(cfg.Routine) != 4 {
		t.Errorf("Routine should keep default, got %v", cfg.Routine)
	}
	if cfg.Catalog.LiftsPath != "/tmp/lifts.yaml" || cfg.Catalog.WorkoutsPath != "" {
		t.Errorf("Catalog = %+v", cfg.Catalog)
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", cfg.WebPort)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{not json}`)

	if _, err := Load(dir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"remote_url": "http://file.example", "log_level": "warn"}`)
	t.Setenv("BROMO_REMOTE_URL", "http://env.example")
	t.Setenv("BROMO_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RemoteURL != "http://env.example" {
		t.Errorf("RemoteURL = %q", cfg.RemoteURL)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"disabled_tools": ["log_purge", "filter_remove"]}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "log_purge" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "log_purge")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"filtered_words": ["curl"], "remote_url": "http://global", "disabled_types": ["log"]}`)
	writeConfig(t, filepath.Join(repoRoot, ".bromo"), `{"filtered_words": ["dip", "curl"], "remote_url": "http://repo"}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.RemoteURL != "http://repo" {
		t.Errorf("RemoteURL = %q, want repo value", cfg.RemoteURL)
	}
	if len(cfg.FilteredWords) != 2 || cfg.FilteredWords[0] != "curl" || cfg.FilteredWords[1] != "dip" {
		t.Errorf("FilteredWords = %v, want [curl dip]", cfg.FilteredWords)
	}
	if len(cfg.DisabledTypes) != 1 {
		t.Errorf("DisabledTypes = %v", cfg.DisabledTypes)
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	repoRoot := t.TempDir()
	writeConfig(t, filepath.Join(repoRoot, ".bromo"), `{"web_port": 7000}`)
	nested := filepath.Join(repoRoot, "a", "b")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), nested)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.WebPort != 7000 {
		t.Errorf("WebPort = %d, want 7000", cfg.WebPort)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if got := FindRepoConfig(t.TempDir()); got != "" {
		// Only possible if a parent of the temp dir carries a .bromo config.
		t.Skipf("found unexpected repo config at %s", got)
	}
}

func TestMerge(t *testing.T) {
	base := &Config{
		WebPort:          8765,
		Routine:          []string{"Upper Push", "Lower Pull"},
		AllowUnsafePaths: true,
		AllowedPaths:     []string{"/a"},
	}
	overlay := &Config{
		WebPort:      9000,
		Routine:      []string{"Lower Push"},
		AllowedPaths: []string{"/b", "/a", " "},
	}

	got := Merge(base, overlay)
	if got.WebPort != 9000 {
		t.Errorf("WebPort = %d", got.WebPort)
	}
	if len(got.Routine) != 1 || got.Routine[0] != "Lower Push" {
		t.Errorf("Routine = %v, want overlay replacement", got.Routine)
	}
	if !got.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be OR'd")
	}
	if len(got.AllowedPaths) != 2 {
		t.Errorf("AllowedPaths = %v, want [/a /b]", got.AllowedPaths)
	}

	got.Routine[0] = "changed"
	if overlay.Routine[0] != "Lower Push" {
		t.Error("Merge should not alias overlay slices")
	}
}

func TestRotation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReferenceDate = "2024-01-01"

	r, err := cfg.Rotation()
	if err != nil {
		t.Fatalf("Rotation() error = %v", err)
	}
	if !r.Reference.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Reference = %v", r.Reference)
	}

	cfg.ReferenceDate = "01/01/2024"
	if _, err := cfg.Rotation(); err == nil {
		t.Error("expected error for malformed reference_date")
	}

	cfg = DefaultConfig()
	cfg.Routine = []string{"Everything"}
	if _, err := cfg.Rotation(); err == nil {
		t.Error("expected error for malformed routine entry")
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := &Config{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
