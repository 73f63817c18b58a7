package mcp

import (
	"database/sql"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/schedule"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"workout", "log", "filter"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"workout_generate": {
		def:     generateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerate },
	},
	"workout_resample": {
		def:     resampleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleResample },
	},
	"workout_list": {
		def:     workoutListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleWorkoutList },
	},
	"log_append": {
		def:     logAppendToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogAppend },
	},
	"log_list": {
		def:     logListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogList },
	},
	"log_delete": {
		def:     logDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogDelete },
	},
	"log_purge": {
		def:     logPurgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogPurge },
	},
	"log_export": {
		def:     logExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogExport },
	},
	"log_import": {
		def:     logImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogImport },
	},
	"filter_add": {
		def:     filterAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFilterAdd },
	},
	"filter_list": {
		def:     filterListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFilterList },
	},
	"filter_remove": {
		def:     filterRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFilterRemove },
	},
}

// AllToolNames returns every tool name in sorted order.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		known := false
		for _, t := range KnownTypes {
			if t == name {
				known = true
				break
			}
		}
		if !known {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool returns the prefix before the first underscore
// ("log_append" → "log").
func GetTypeForTool(toolName string) string {
	typ, _, found := strings.Cut(toolName, "_")
	if !found {
		return ""
	}
	return typ
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for _, name := range AllToolNames() {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates an MCP server with the bromo tools registered, minus
// cfg.DisabledTools and every tool of cfg.DisabledTypes.
func NewServer(db *sql.DB, cfg *config.Config, b *schedule.Builder, logger *slog.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"bromo",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, b, logger)

	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for _, name := range AllToolNames() {
		if disabled[name] {
			continue
		}
		entry := toolRegistry[name]
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves the MCP tools over stdio.
func Run(db *sql.DB, cfg *config.Config, b *schedule.Builder, logger *slog.Logger, version string) error {
	return server.ServeStdio(NewServer(db, cfg, b, logger, version))
}
