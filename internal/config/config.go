package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hpungsan/bromo/internal/schedule"
)

// ReferenceDateLayout is the format of Config.ReferenceDate.
const ReferenceDateLayout = "2006-01-02"

// CatalogConfig points at user-supplied catalog files. Empty paths use the
// built-in catalog.
type CatalogConfig struct {
	LiftsPath    string `json:"lifts_path,omitempty"`
	WorkoutsPath string `json:"workouts_path,omitempty"`
}

// Config holds application configuration.
type Config struct {
	// FilteredWords are excluded from every generated schedule, in addition
	// to the words stored with `bromo filter add`.
	FilteredWords []string `json:"filtered_words,omitempty"`

	// ReferenceDate is the first day of the rotation (YYYY-MM-DD).
	ReferenceDate string `json:"reference_date,omitempty"`

	// Weeks cycle once per calendar week starting at ReferenceDate.
	Weeks []string `json:"weeks,omitempty"`

	// BodyGroups and MovementDirections are the accepted values for
	// `bromo generate --body-group/--direction`.
	BodyGroups         []string `json:"body_groups,omitempty"`
	MovementDirections []string `json:"movement_directions,omitempty"`

	// Routine cycles once per day. Entries are "<body group> <direction>".
	Routine []string `json:"routine,omitempty"`

	Catalog CatalogConfig `json:"catalog"`

	// RemoteURL is the base URL of a remote workout generator.
	RemoteURL string `json:"remote_url,omitempty"`

	// WebBind and WebPort configure `bromo serve`.
	WebBind string `json:"web_bind,omitempty"`
	WebPort int    `json:"web_port,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// AllowedPaths is an allowlist of directories for log import/export.
	// Paths outside ~/.bromo/exports require either being in this list or AllowUnsafePaths=true.
	// Relative paths are ignored.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use the sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes disables every MCP tool of a type ("workout", "log", "filter").
	DisabledTypes []string `json:"disabled_types,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	r := schedule.DefaultRotation()
	return &Config{
		ReferenceDate:      r.Reference.Format(ReferenceDateLayout),
		Weeks:              r.Weeks,
		BodyGroups:         []string{"Upper", "Lower"},
		MovementDirections: []string{"Push", "Pull"},
		Routine:            r.Routine,
		WebBind:            "127.0.0.1",
		WebPort:            8765,
		LogLevel:           "info",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadWithRepo loads configuration from both global (~/.bromo) and repo (.bromo) directories.
// Repo config is found by walking upward from startDir to find the nearest .bromo/config.json.
// Repo config takes precedence for scalar values; arrays are merged (deduplicated).
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	cfg := Merge(Merge(DefaultConfig(), global), repo)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FindRepoConfig walks upward from startDir to find the nearest .bromo/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".bromo", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero-valued config (not defaults) if the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}
	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BROMO_REMOTE_URL"); v != "" {
		cfg.RemoteURL = v
	}
	if v := os.Getenv("BROMO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars. Rotation lists (weeks, routine,
// body groups, directions) are replaced wholesale by a non-empty overlay since
// their order matters; other arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.ReferenceDate = pick(overlay.ReferenceDate, base.ReferenceDate)
	result.Catalog.LiftsPath = pick(overlay.Catalog.LiftsPath, base.Catalog.LiftsPath)
	result.Catalog.WorkoutsPath = pick(overlay.Catalog.WorkoutsPath, base.Catalog.WorkoutsPath)
	result.RemoteURL = pick(overlay.RemoteURL, base.RemoteURL)
	result.WebBind = pick(overlay.WebBind, base.WebBind)
	result.WebPort = pick(overlay.WebPort, base.WebPort)
	result.LogLevel = pick(overlay.LogLevel, base.LogLevel)
	result.DBMaxOpenConns = pick(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pick(overlay.DBMaxIdleConns, base.DBMaxIdleConns)

	result.Weeks = replaceSlice(base.Weeks, overlay.Weeks)
	result.Routine = replaceSlice(base.Routine, overlay.Routine)
	result.BodyGroups = replaceSlice(base.BodyGroups, overlay.BodyGroups)
	result.MovementDirections = replaceSlice(base.MovementDirections, overlay.MovementDirections)

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	result.FilteredWords = mergeStringSlice(base.FilteredWords, overlay.FilteredWords)
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func pick[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
		return overlay
	}
	return base
}

func replaceSlice(base, overlay []string) []string {
	if len(overlay) > 0 {
		return append([]string(nil), overlay...)
	}
	return append([]string(nil), base...)
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string(nil), a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// Rotation builds the schedule rotation described by the config.
func (c *Config) Rotation() (schedule.Rotation, error) {
	ref, err := time.Parse(ReferenceDateLayout, c.ReferenceDate)
	if err != nil {
		return schedule.Rotation{}, fmt.Errorf("reference_date: %w", err)
	}
	r := schedule.Rotation{Reference: ref, Weeks: c.Weeks, Routine: c.Routine}
	if err := r.Validate(); err != nil {
		return schedule.Rotation{}, err
	}
	return r, nil
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
