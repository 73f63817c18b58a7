package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/ops"
	"github.com/hpungsan/bromo/internal/remote"
	"github.com/hpungsan/bromo/internal/schedule"
	"github.com/hpungsan/bromo/internal/web"
)

// env carries what the commands need. It is nil for --help and --version.
type env struct {
	db      *sql.DB
	cfg     *config.Config
	builder *schedule.Builder
	logger  *slog.Logger
}

// newCLIApp creates the CLI application with all commands.
func newCLIApp(e *env) *cli.App {
	app := &cli.App{
		Name:    "bromo",
		Usage:   "Workout schedule generator",
		Version: Version,
		Commands: []*cli.Command{
			generateCmd(e),
			resampleCmd(e),
			workoutsCmd(e),
			liftsCmd(e),
			todayCmd(e),
			logCmd(e),
			filterCmd(e),
			remoteCmd(e),
			serveCmd(e),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func excludeFlag() cli.Flag {
	return &cli.StringFlag{Name: "exclude", Aliases: []string{"x"}, Usage: "Comma-separated words; lifts containing any are skipped"}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|markdown"}
}

// generateCmd creates the generate command.
func generateCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a schedule (default: today's rotation workout)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "workout", Aliases: []string{"w"}, Usage: `Template name, e.g. "Upper Push Strength"`},
			&cli.StringFlag{Name: "body-group", Usage: "Upper|Lower"},
			&cli.StringFlag{Name: "direction", Usage: "Push|Pull"},
			&cli.StringFlag{Name: "week", Usage: "Recovery|Hypertrophy|Strength|Test"},
			&cli.StringFlag{Name: "date", Usage: "Rotation date (YYYY-MM-DD) for parts not given"},
			excludeFlag(),
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			date, err := parseDate("date", c.String("date"))
			if err != nil {
				return outputError(err)
			}
			out, err := ops.Generate(c.Context, e.db, e.cfg, e.builder, ops.GenerateInput{
				Workout:   c.String("workout"),
				BodyGroup: c.String("body-group"),
				Direction: c.String("direction"),
				Week:      c.String("week"),
				Date:      date,
				Exclude:   parseList(c.String("exclude")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputSchedule(c, out.Schedule, out)
		},
	}
}

// resampleCmd creates the resample command.
func resampleCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "resample",
		Usage: "Re-pick one slot of a schedule (reads generate output from stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "slot", Aliases: []string{"s"}, Required: true, Usage: `Slot id, e.g. "Primary"`},
			excludeFlag(),
			formatFlag(),
		},
		Action: func(c *cli.Context) error {
			s, err := readSchedule(c)
			if err != nil {
				return outputError(err)
			}
			out, err := ops.Resample(c.Context, e.db, e.cfg, e.builder, ops.ResampleInput{
				Schedule: s,
				SlotID:   c.String("slot"),
				Exclude:  parseList(c.String("exclude")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputSchedule(c, out.Schedule, out)
		},
	}
}

// workoutsCmd creates the workouts command.
func workoutsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "workouts",
		Usage: "List workout templates and their slots",
		Action: func(c *cli.Context) error {
			return outputJSON(c, ops.Workouts(e.builder.Engine().Catalog()))
		},
	}
}

// liftsCmd creates the lifts command.
func liftsCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "lifts",
		Usage: "List catalog lifts with their sampling weights",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "Compound|Accessory|Isolation|Core"},
			&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: `Direction and group, e.g. "Upper Pull" or "Biceps"`},
			excludeFlag(),
		},
		Action: func(c *cli.Context) error {
			return outputJSON(c, ops.Lifts(e.builder.Engine(), ops.LiftsInput{
				Category:          c.String("category"),
				DirectionAndGroup: c.String("group"),
				Exclude:           parseList(c.String("exclude")),
			}))
		},
	}
}

// todayCmd creates the today command.
func todayCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "today",
		Usage: "Show the rotation day for a date (default: today)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Usage: "Date (YYYY-MM-DD)"},
		},
		Action: func(c *cli.Context) error {
			date, err := parseDate("date", c.String("date"))
			if err != nil {
				return outputError(err)
			}
			day, err := ops.Today(e.cfg, date)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, map[string]any{
				"body_group": day.BodyGroup,
				"direction":  day.Direction,
				"week":       day.Week,
				"workout":    day.Workout(),
			})
		},
	}
}

// logCmd creates the log command group.
func logCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Record and manage performed exercises",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Log a performed exercise",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "exercise", Aliases: []string{"e"}, Required: true, Usage: "Exercise name"},
					&cli.IntFlag{Name: "sets", Usage: "Sets performed"},
					&cli.IntFlag{Name: "reps", Usage: "Reps per set"},
					&cli.StringFlag{Name: "sets-and-reps", Usage: `Sets and reps as "5x5"; overrides --sets/--reps`},
					&cli.IntFlag{Name: "weight", Usage: "Weight lifted"},
					&cli.StringFlag{Name: "workout", Aliases: []string{"w"}, Usage: "Template the exercise came from"},
					&cli.StringFlag{Name: "slot", Usage: "Slot id the exercise filled"},
					&cli.StringFlag{Name: "date", Usage: "When it was performed (YYYY-MM-DD or RFC3339; default: now)"},
				},
				Action: func(c *cli.Context) error {
					date, err := parseDate("date", c.String("date"))
					if err != nil {
						return outputError(err)
					}
					out, err := ops.LogAppend(c.Context, e.db, ops.LogAppendInput{
						Exercise:    c.String("exercise"),
						Sets:        c.Int("sets"),
						Reps:        c.Int("reps"),
						SetsAndReps: c.String("sets-and-reps"),
						Weight:      c.Int("weight"),
						Workout:     c.String("workout"),
						SlotID:      c.String("slot"),
						LoggedAt:    date,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "list",
				Usage: "List logged exercises, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "exercise", Aliases: []string{"e"}, Usage: "Filter by exercise name"},
					&cli.StringFlag{Name: "since", Usage: "Only entries at or after this date"},
					&cli.StringFlag{Name: "until", Usage: "Only entries before this date"},
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
					&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
					&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted entries"},
				},
				Action: func(c *cli.Context) error {
					since, err := parseDate("since", c.String("since"))
					if err != nil {
						return outputError(err)
					}
					until, err := parseDate("until", c.String("until"))
					if err != nil {
						return outputError(err)
					}
					out, err := ops.LogList(c.Context, e.db, ops.LogListInput{
						Exercise:       c.String("exercise"),
						Since:          since,
						Until:          until,
						Limit:          c.Int("limit"),
						Offset:         c.Int("offset"),
						IncludeDeleted: c.Bool("include-deleted"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "delete",
				Usage:     "Soft-delete a log entry",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					out, err := ops.LogDelete(c.Context, e.db, c.Args().First())
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "purge",
				Usage: "Permanently delete soft-deleted log entries",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "older-than", Usage: "Only purge if deleted more than N days ago (e.g., 7d)"},
				},
				Action: func(c *cli.Context) error {
					var input ops.PurgeInput
					if olderThan := c.String("older-than"); olderThan != "" {
						days, err := parseDuration(olderThan)
						if err != nil {
							return outputError(errors.NewInvalidRequest(err.Error()))
						}
						input.OlderThanDays = &days
					}
					out, err := ops.Purge(c.Context, e.db, input)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "export",
				Usage: "Export the log to a JSONL file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.bromo/exports/log-<timestamp>.jsonl)"},
					&cli.BoolFlag{Name: "include-deleted", Usage: "Include soft-deleted entries"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.Export(c.Context, e.db, e.cfg, ops.ExportInput{
						Path:           c.String("path"),
						IncludeDeleted: c.Bool("include-deleted"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "import",
				Usage: "Import log entries from a JSONL file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Import file path"},
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|rename"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.Import(c.Context, e.db, e.cfg, ops.ImportInput{
						Path: c.String("path"),
						Mode: ops.ImportMode(c.String("mode")),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// filterCmd creates the filter command group.
func filterCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "filter",
		Usage: "Manage words excluded from every schedule",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Store a filter word",
				ArgsUsage: "<word>",
				Action: func(c *cli.Context) error {
					out, err := ops.FilterAdd(c.Context, e.db, strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:  "list",
				Usage: "List stored and configured filter words",
				Action: func(c *cli.Context) error {
					out, err := ops.FilterList(c.Context, e.db, e.cfg.FilteredWords)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a stored filter word",
				ArgsUsage: "<word>",
				Action: func(c *cli.Context) error {
					out, err := ops.FilterRemove(c.Context, e.db, strings.Join(c.Args().Slice(), " "))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// remoteCmd creates the remote command group.
func remoteCmd(e *env) *cli.Command {
	flags := func(extra ...cli.Flag) []cli.Flag {
		return append([]cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "Generator base URL (default: remote_url from config)"},
			&cli.StringFlag{Name: "workout", Aliases: []string{"w"}, Required: true, Usage: `Body group and direction, e.g. "Upper Push"`},
			&cli.StringFlag{Name: "week", Required: true, Usage: "Recovery|Hypertrophy|Strength|Test"},
			formatFlag(),
		}, extra...)
	}

	client := func(c *cli.Context) *remote.Client {
		url := c.String("url")
		if url == "" {
			url = e.cfg.RemoteURL
		}
		return remote.NewClient(url, remote.WithLogger(e.logger))
	}

	return &cli.Command{
		Name:  "remote",
		Usage: "Use a remote workout generator",
		Subcommands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Fetch a schedule from the remote generator",
				Flags: flags(),
				Action: func(c *cli.Context) error {
					s, err := client(c).Generate(c.Context, c.String("workout"), c.String("week"))
					if err != nil {
						return outputError(err)
					}
					return outputSchedule(c, s, ops.GenerateOutput{Schedule: s})
				},
			},
			{
				Name:  "resample",
				Usage: "Re-pick one slot via the remote generator (reads a schedule from stdin)",
				Flags: flags(
					&cli.StringFlag{Name: "slot", Aliases: []string{"s"}, Required: true, Usage: `Slot id, e.g. "Primary"`},
				),
				Action: func(c *cli.Context) error {
					s, err := readSchedule(c)
					if err != nil {
						return outputError(err)
					}
					s, err = client(c).Resample(c.Context, s, c.String("slot"), c.String("workout"), c.String("week"))
					if err != nil {
						return outputError(err)
					}
					return outputSchedule(c, s, ops.GenerateOutput{Schedule: s})
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(e *env) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the workout sheet and the /generate API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default: web_bind from config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Port (default: web_port from config)"},
		},
		Action: func(c *cli.Context) error {
			cfg := *e.cfg
			if c.IsSet("bind") {
				cfg.WebBind = c.String("bind")
			}
			if c.IsSet("port") {
				cfg.WebPort = c.Int("port")
			}
			srv, err := web.NewServer(e.db, &cfg, e.builder, e.logger, Version)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			return web.Run(srv, e.logger)
		},
	}
}

// Helper functions

// outputJSON writes v to the app's writer as indented JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputSchedule writes s as a markdown sheet or v as JSON, per --format.
func outputSchedule(c *cli.Context, s schedule.Schedule, v any) error {
	switch c.String("format") {
	case "", "json":
		return outputJSON(c, v)
	case "markdown", "md":
		_, err := io.WriteString(c.App.Writer, s.Markdown())
		return err
	default:
		return outputError(errors.NewInvalidRequest("format must be json or markdown"))
	}
}

// outputError formats error for CLI.
func outputError(err error) error {
	if be, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", be.Code, be.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readSchedule decodes a schedule from the app's reader. Both the bare
// schedule and the {"schedule": ...} envelope printed by generate are accepted.
func readSchedule(c *cli.Context) (schedule.Schedule, error) {
	if f, ok := c.App.Reader.(*os.File); ok && !stdinHasData(f) {
		return schedule.Schedule{}, errors.NewInvalidRequest("schedule must be piped via stdin")
	}
	data, err := io.ReadAll(c.App.Reader)
	if err != nil {
		return schedule.Schedule{}, errors.NewInternal(err)
	}

	var envelope struct {
		Schedule *schedule.Schedule `json:"schedule"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return schedule.Schedule{}, errors.NewInvalidRequest("invalid schedule JSON: " + err.Error())
	}
	if envelope.Schedule != nil {
		return *envelope.Schedule, nil
	}

	var s schedule.Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		return schedule.Schedule{}, errors.NewInvalidRequest("invalid schedule JSON: " + err.Error())
	}
	return s, nil
}

// stdinHasData returns true if f has piped data (not a terminal).
func stdinHasData(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// parseList splits a comma-separated string, dropping blanks.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseDate parses YYYY-MM-DD or RFC3339. Empty input returns nil.
func parseDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, errors.NewInvalidRequest(field + " must be YYYY-MM-DD or RFC3339")
}

// parseDuration parses "7d" format to days.
func parseDuration(s string) (int, error) {
	if numStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(numStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		if days < 0 {
			return 0, fmt.Errorf("duration must be non-negative")
		}
		return days, nil
	}
	return 0, fmt.Errorf("duration must end with 'd' (days), e.g., 7d")
}
