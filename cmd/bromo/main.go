package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/bromo/internal/catalog"
	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/db"
	"github.com/hpungsan/bromo/internal/mcp"
	"github.com/hpungsan/bromo/internal/picker"
	"github.com/hpungsan/bromo/internal/schedule"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"generate": true, "resample": true, "workouts": true, "lifts": true,
	"today": true, "log": true, "filter": true, "remote": true,
	"serve": true, "help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	if cliCommands[os.Args[1]] {
		return true
	}
	return isHelpOrVersion()
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _
  | |__  _ __ ___  _ __ ___   ___
  | '_ \| '__/ _ \| '_ ` + "`" + ` _ \ / _ \
  | |_) | | | (_) | | | | | | (_) |
  |_.__/|_|  \___/|_| |_| |_|\___/

  Workout schedule generator

  Usage: bromo <command> [options]
         bromo --help

  MCP server mode requires piped input.`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil)
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("could not determine home directory: %v", err)
	}
	baseDir := filepath.Join(homeDir, ".bromo")

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fatal("failed to load config: %v", err)
	}

	// stdout carries CLI JSON and the MCP protocol, so logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	database, err := db.Init(baseDir)
	if err != nil {
		fatal("failed to initialize database: %v", err)
	}
	defer database.Close()
	db.ConfigurePool(database, cfg)

	c, err := catalog.Load(cfg.Catalog.LiftsPath, cfg.Catalog.WorkoutsPath)
	if err != nil {
		fatal("failed to load catalog: %v", err)
	}
	for _, p := range c.Uncovered() {
		logger.Warn("no lift fills template slot",
			"category", p.Category, "direction_and_group", p.DirectionAndGroup)
	}

	if unknown := mcp.ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		logger.Warn("unknown tools in disabled_tools", "tools", strings.Join(unknown, ", "))
	}
	if unknown := mcp.ValidateDisabledTypes(cfg.DisabledTypes); len(unknown) > 0 {
		logger.Warn("unknown types in disabled_types", "types", strings.Join(unknown, ", "))
	}

	builder := schedule.NewBuilder(picker.NewEngine(c), logger)

	// CLI mode: known subcommand
	if isCLIMode() {
		app := newCLIApp(&env{db: database, cfg: cfg, builder: builder, logger: logger})
		if err := app.Run(os.Args); err != nil {
			fatal("%v", err)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'bromo --help' for usage.\n")
		os.Exit(1)
	}

	// MCP server mode (default)
	if err := mcp.Run(database, cfg, builder, logger, Version); err != nil {
		fatal("%v", err)
	}
}
