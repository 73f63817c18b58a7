package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var excludeParam = mcp.WithArray("exclude",
	mcp.Description("Extra words; any lift whose name contains one (case-insensitive) is avoided."),
	mcp.WithStringItems(),
)

var generateToolDef = mcp.NewTool("workout_generate",
	mcp.WithDescription("Generate a workout schedule by weighted random sampling of the lift catalog. "+
		"Pass workout for a named template, or any of body_group/direction/week; missing parts come from the rotation day for date (default today)."),
	mcp.WithString("workout", mcp.Description("Template name, e.g. \"Upper Push Strength\"")),
	mcp.WithString("body_group", mcp.Description("Body group, e.g. Upper or Lower")),
	mcp.WithString("direction", mcp.Description("Movement direction, e.g. Push or Pull")),
	mcp.WithString("week", mcp.Description("Training week, e.g. Recovery, Hypertrophy, Strength, Test")),
	mcp.WithString("date", mcp.Description("Rotation date (YYYY-MM-DD or RFC 3339). Defaults to today.")),
	excludeParam,
)

var resampleToolDef = mcp.NewTool("workout_resample",
	mcp.WithDescription("Replace the lift in one slot of a schedule returned by workout_generate. Other slots are unchanged and no lift already in the schedule is reused unless it is the only choice."),
	mcp.WithObject("schedule", mcp.Required(), mcp.Description("Schedule object as returned by workout_generate")),
	mcp.WithString("slot_id", mcp.Required(), mcp.Description("Slot to replace, e.g. Primary, Secondary, Core")),
	excludeParam,
)

var workoutListToolDef = mcp.NewTool("workout_list",
	mcp.WithDescription("List workout templates with their slots, sets and reps, plus today's rotation day."),
)

var logAppendToolDef = mcp.NewTool("log_append",
	mcp.WithDescription("Record a performed exercise."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Lift name")),
	mcp.WithString("sets_and_reps", mcp.Description("Sets and reps as \"SxR\", e.g. 5x5. Overrides sets and reps.")),
	mcp.WithNumber("sets", mcp.Description("Number of sets")),
	mcp.WithNumber("reps", mcp.Description("Reps per set")),
	mcp.WithNumber("weight", mcp.Description("Working weight")),
	mcp.WithString("workout", mcp.Description("Template the exercise came from")),
	mcp.WithString("slot_id", mcp.Description("Slot the exercise filled")),
	mcp.WithString("logged_at", mcp.Description("When it was performed (YYYY-MM-DD or RFC 3339). Defaults to now.")),
)

var logListToolDef = mcp.NewTool("log_list",
	mcp.WithDescription("List logged exercises, newest first."),
	mcp.WithString("exercise", mcp.Description("Only entries for this lift (case-insensitive)")),
	mcp.WithString("since", mcp.Description("Inclusive lower bound (YYYY-MM-DD or RFC 3339)")),
	mcp.WithString("until", mcp.Description("Exclusive upper bound (YYYY-MM-DD or RFC 3339)")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Entries to skip")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted entries")),
)

var logDeleteToolDef = mcp.NewTool("log_delete",
	mcp.WithDescription("Soft-delete a log entry. It stays recoverable until log_purge."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Log entry id")),
)

var logPurgeToolDef = mcp.NewTool("log_purge",
	mcp.WithDescription("Permanently remove soft-deleted log entries."),
	mcp.WithNumber("older_than_days", mcp.Description("Only purge entries deleted more than this many days ago")),
)

var logExportToolDef = mcp.NewTool("log_export",
	mcp.WithDescription("Export the exercise log to a JSONL file."),
	mcp.WithString("path", mcp.Description("Destination .jsonl path. Defaults to ~/.bromo/exports/log-<timestamp>.jsonl")),
	mcp.WithBoolean("include_deleted", mcp.Description("Include soft-deleted entries")),
)

var logImportToolDef = mcp.NewTool("log_import",
	mcp.WithDescription("Import log entries from a JSONL file written by log_export."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Source .jsonl path")),
	mcp.WithString("mode", mcp.Description("Collision handling"), mcp.Enum("error", "replace", "rename")),
)

var filterAddToolDef = mcp.NewTool("filter_add",
	mcp.WithDescription("Store a word that every generated schedule avoids."),
	mcp.WithString("word", mcp.Required(), mcp.Description("Word or phrase, e.g. barbell")),
)

var filterListToolDef = mcp.NewTool("filter_list",
	mcp.WithDescription("List stored and configured filter words."),
)

var filterRemoveToolDef = mcp.NewTool("filter_remove",
	mcp.WithDescription("Remove a stored filter word."),
	mcp.WithString("word", mcp.Required(), mcp.Description("Word to remove (case-insensitive)")),
)
