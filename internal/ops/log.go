package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/bromo/internal/db"
	"github.com/hpungsan/bromo/internal/errors"
	"github.com/hpungsan/bromo/internal/schedule"
)

// LogAppendInput describes a performed exercise. SetsAndReps, when set,
// overrides Sets and Reps.
type LogAppendInput struct {
	Exercise    string
	Sets        int
	Reps        int
	SetsAndReps string
	Weight      int
	Workout     string
	SlotID      string
	LoggedAt    *time.Time // default: now
}

// LogAppendOutput contains the stored entry.
type LogAppendOutput struct {
	ID       string            `json:"id"`
	Exercise schedule.Exercise `json:"exercise"`
}

// LogAppend records a performed exercise.
func LogAppend(ctx context.Context, database *sql.DB, input LogAppendInput) (*LogAppendOutput, error) {
	name := strings.TrimSpace(input.Exercise)
	if name == "" {
		return nil, errors.NewInvalidRequest("exercise is required")
	}

	sets, reps := input.Sets, input.Reps
	if input.SetsAndReps != "" {
		sets, reps = schedule.SplitSetsAndReps(input.SetsAndReps)
	}
	if sets < 0 || reps < 0 {
		return nil, errors.NewInvalidRequest("sets and reps must not be negative")
	}
	if input.Weight < 0 {
		return nil, errors.NewInvalidRequest("weight must not be negative")
	}

	now := time.Now()
	at := now
	if input.LoggedAt != nil {
		at = *input.LoggedAt
	}

	entry := &db.LogEntry{
		ID:       newID(now),
		Exercise: name,
		Sets:     sets,
		Reps:     reps,
		Weight:   input.Weight,
		Workout:  optional(input.Workout),
		SlotID:   optional(input.SlotID),
		LoggedAt: at.Unix(),
	}
	if err := db.InsertLogEntry(ctx, database, entry); err != nil {
		return nil, err
	}

	return &LogAppendOutput{
		ID:       entry.ID,
		Exercise: toExercise(*entry),
	}, nil
}

// LogItem is a log entry with its exercise form.
type LogItem struct {
	db.LogEntry
	SetsAndReps string    `json:"sets_and_reps"`
	Date        time.Time `json:"date"`
}

// LogListInput filters the log.
type LogListInput struct {
	Exercise       string
	Since          *time.Time
	Until          *time.Time
	Limit          int // default: 20, max: 100
	Offset         int
	IncludeDeleted bool
}

// LogListOutput contains one page of the log.
type LogListOutput struct {
	Items      []LogItem  `json:"items"`
	Pagination Pagination `json:"pagination"`
	Sort       string     `json:"sort"`
}

// LogList returns log entries newest first.
func LogList(ctx context.Context, database *sql.DB, input LogListInput) (*LogListOutput, error) {
	limit := clampLimit(input.Limit)
	offset := max(input.Offset, 0)

	f := db.LogFilter{
		Exercise:       strings.TrimSpace(input.Exercise),
		IncludeDeleted: input.IncludeDeleted,
	}
	if input.Since != nil {
		s := input.Since.Unix()
		f.Since = &s
	}
	if input.Until != nil {
		u := input.Until.Unix()
		f.Until = &u
	}

	entries, total, err := db.ListLogEntries(ctx, database, f, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]LogItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, LogItem{
			LogEntry:    e,
			SetsAndReps: schedule.CombineSetsAndReps(e.Sets, e.Reps),
			Date:        time.Unix(e.LoggedAt, 0).UTC(),
		})
	}

	return &LogListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
		Sort: "logged_at_desc",
	}, nil
}

// LogDeleteOutput contains the result of LogDelete.
type LogDeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// LogDelete soft-deletes a log entry.
func LogDelete(ctx context.Context, database *sql.DB, id string) (*LogDeleteOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := db.SoftDeleteLogEntry(ctx, database, id); err != nil {
		return nil, err
	}
	return &LogDeleteOutput{Deleted: true, ID: id}, nil
}

func toExercise(e db.LogEntry) schedule.Exercise {
	ex := schedule.FromLog(e.Exercise, e.Sets, e.Reps, e.Weight, time.Unix(e.LoggedAt, 0).UTC())
	if e.SlotID != nil {
		ex.SlotID = *e.SlotID
	}
	return ex
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
