package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/ops"
	"github.com/hpungsan/bromo/internal/schedule"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db      *sql.DB
	cfg     *config.Config
	builder *schedule.Builder
	logger  *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, b *schedule.Builder, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{db: db, cfg: cfg, builder: b, logger: logger}
}

// Request types for each tool

// GenerateRequest represents the arguments for workout_generate.
type GenerateRequest struct {
	Workout   string   `json:"workout,omitempty"`
	BodyGroup string   `json:"body_group,omitempty"`
	Direction string   `json:"direction,omitempty"`
	Week      string   `json:"week,omitempty"`
	Date      string   `json:"date,omitempty"`
	Exclude   []string `json:"exclude,omitempty"`
}

// ResampleRequest represents the arguments for workout_resample.
type ResampleRequest struct {
	Schedule schedule.Schedule `json:"schedule"`
	SlotID   string            `json:"slot_id"`
	Exclude  []string          `json:"exclude,omitempty"`
}

// LogAppendRequest represents the arguments for log_append.
type LogAppendRequest struct {
	Exercise    string `json:"exercise"`
	SetsAndReps string `json:"sets_and_reps,omitempty"`
	Sets        int    `json:"sets,omitempty"`
	Reps        int    `json:"reps,omitempty"`
	Weight      int    `json:"weight,omitempty"`
	Workout     string `json:"workout,omitempty"`
	SlotID      string `json:"slot_id,omitempty"`
	LoggedAt    string `json:"logged_at,omitempty"`
}

// LogListRequest represents the arguments for log_list.
type LogListRequest struct {
	Exercise       string `json:"exercise,omitempty"`
	Since          string `json:"since,omitempty"`
	Until          string `json:"until,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// IDRequest carries a single log entry id.
type IDRequest struct {
	ID string `json:"id"`
}

// PurgeRequest represents the arguments for log_purge.
type PurgeRequest struct {
	OlderThanDays *int `json:"older_than_days,omitempty"`
}

// ExportRequest represents the arguments for log_export.
type ExportRequest struct {
	Path           string `json:"path,omitempty"`
	IncludeDeleted bool   `json:"include_deleted,omitempty"`
}

// ImportRequest represents the arguments for log_import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// WordRequest carries a filter word.
type WordRequest struct {
	Word string `json:"word"`
}

// WorkoutListOutput is the workout_list result.
type WorkoutListOutput struct {
	*ops.WorkoutsOutput
	Today *schedule.Day `json:"today,omitempty"`
}

// Handler implementations

// HandleGenerate handles the workout_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	date, err := parseDate("date", input.Date)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Generate(ctx, h.db, h.cfg, h.builder, ops.GenerateInput{
		Workout:   input.Workout,
		BodyGroup: input.BodyGroup,
		Direction: input.Direction,
		Week:      input.Week,
		Date:      date,
		Exclude:   input.Exclude,
	})
	if err != nil {
		return errorResult(err), nil
	}
	h.logger.Debug("generated schedule", "workout", result.Schedule.Workout)
	return successResult(result)
}

// HandleResample handles the workout_resample tool call.
func (h *Handlers) HandleResample(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ResampleRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Resample(ctx, h.db, h.cfg, h.builder, ops.ResampleInput{
		Schedule: input.Schedule,
		SlotID:   input.SlotID,
		Exclude:  input.Exclude,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleWorkoutList handles the workout_list tool call.
func (h *Handlers) HandleWorkoutList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := WorkoutListOutput{WorkoutsOutput: ops.Workouts(h.builder.Engine().Catalog())}
	if day, err := ops.Today(h.cfg, nil); err == nil {
		out.Today = &day
	} else {
		h.logger.Warn("rotation unavailable", "error", err)
	}
	return successResult(out)
}

// HandleLogAppend handles the log_append tool call.
func (h *Handlers) HandleLogAppend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogAppendRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	at, err := parseDate("logged_at", input.LoggedAt)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.LogAppend(ctx, h.db, ops.LogAppendInput{
		Exercise:    input.Exercise,
		Sets:        input.Sets,
		Reps:        input.Reps,
		SetsAndReps: input.SetsAndReps,
		Weight:      input.Weight,
		Workout:     input.Workout,
		SlotID:      input.SlotID,
		LoggedAt:    at,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogList handles the log_list tool call.
func (h *Handlers) HandleLogList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	since, err := parseDate("since", input.Since)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	until, err := parseDate("until", input.Until)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.LogList(ctx, h.db, ops.LogListInput{
		Exercise:       input.Exercise,
		Since:          since,
		Until:          until,
		Limit:          input.Limit,
		Offset:         input.Offset,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogDelete handles the log_delete tool call.
func (h *Handlers) HandleLogDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.LogDelete(ctx, h.db, input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogPurge handles the log_purge tool call.
func (h *Handlers) HandleLogPurge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[PurgeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Purge(ctx, h.db, ops.PurgeInput{OlderThanDays: input.OlderThanDays})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogExport handles the log_export tool call.
func (h *Handlers) HandleLogExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Path:           input.Path,
		IncludeDeleted: input.IncludeDeleted,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleLogImport handles the log_import tool call.
func (h *Handlers) HandleLogImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Import(ctx, h.db, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFilterAdd handles the filter_add tool call.
func (h *Handlers) HandleFilterAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WordRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.FilterAdd(ctx, h.db, input.Word)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFilterList handles the filter_list tool call.
func (h *Handlers) HandleFilterList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.FilterList(ctx, h.db, h.cfg.FilteredWords)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleFilterRemove handles the filter_remove tool call.
func (h *Handlers) HandleFilterRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[WordRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.FilterRemove(ctx, h.db, input.Word)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// Result helpers

// errorResult converts err into an IsError result carrying a JSON error
// object. INTERNAL errors never expose details or the underlying message.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if be, ok := errors.As(err); ok {
		msg := be.Message
		if be.Code == errors.ErrInternal {
			msg = "an internal error occurred"
		} else if full := err.Error(); strings.HasSuffix(full, be.Error()) {
			// keep wrapping context such as "items[2]: "
			msg = strings.TrimSuffix(full, be.Error()) + msg
		}
		errorObj := map[string]any{
			"code":    be.Code,
			"message": msg,
			"status":  be.Status,
		}
		if be.Code != errors.ErrInternal && be.Details != nil {
			errorObj["details"] = be.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
