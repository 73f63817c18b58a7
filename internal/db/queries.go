package db

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/bromo/internal/errors"
)

// LogEntry is one performed exercise.
type LogEntry struct {
	ID        string  `json:"id"`
	Exercise  string  `json:"exercise"`
	Sets      int     `json:"sets"`
	Reps      int     `json:"reps"`
	Weight    int     `json:"weight"`
	Workout   *string `json:"workout,omitempty"`
	SlotID    *string `json:"slot_id,omitempty"`
	LoggedAt  int64   `json:"logged_at"`
	DeletedAt *int64  `json:"deleted_at,omitempty"`
}

// LogFilter narrows ListLogEntries.
type LogFilter struct {
	Exercise       string // case-insensitive exact match; empty means all
	Since          *int64 // inclusive unix seconds
	Until          *int64 // exclusive unix seconds
	IncludeDeleted bool
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const logColumns = `id, exercise, sets, reps, weight, workout, slot_id, logged_at, deleted_at`

// InsertLogEntry stores a new log entry. e.DeletedAt is written as given so
// imports can restore soft-deleted rows.
func InsertLogEntry(ctx context.Context, q querier, e *LogEntry) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO log_entries (`+logColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Exercise, e.Sets, e.Reps, e.Weight,
		toNullString(e.Workout), toNullString(e.SlotID), e.LoggedAt, toNullInt64(e.DeletedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewInvalidRequest("log entry already exists: " + e.ID)
		}
		return errors.NewInternal(err)
	}
	return nil
}

// ReplaceLogEntry inserts e or overwrites the row with the same ID.
func ReplaceLogEntry(ctx context.Context, q querier, e *LogEntry) error {
	_, err := q.ExecContext(ctx,
		`INSERT OR REPLACE INTO log_entries (`+logColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Exercise, e.Sets, e.Reps, e.Weight,
		toNullString(e.Workout), toNullString(e.SlotID), e.LoggedAt, toNullInt64(e.DeletedAt),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetLogEntry retrieves a log entry by its ULID.
// If includeDeleted is false, soft-deleted entries are excluded.
func GetLogEntry(ctx context.Context, q querier, id string, includeDeleted bool) (*LogEntry, error) {
	query := `SELECT ` + logColumns + ` FROM log_entries WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}

	e, err := scanLogEntry(q.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("log entry", id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return e, nil
}

// ListLogEntries returns entries newest first, plus the total matching count.
func ListLogEntries(ctx context.Context, q querier, f LogFilter, limit, offset int) ([]LogEntry, int, error) {
	where, args := f.clause()

	var total int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT `+logColumns+` FROM log_entries`+where+` ORDER BY logged_at DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		e, err := scanLogEntry(rows)
		if err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return entries, total, nil
}

func (f LogFilter) clause() (string, []any) {
	var conds []string
	var args []any
	if !f.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if f.Exercise != "" {
		conds = append(conds, "exercise = ? COLLATE NOCASE")
		args = append(args, f.Exercise)
	}
	if f.Since != nil {
		conds = append(conds, "logged_at >= ?")
		args = append(args, *f.Since)
	}
	if f.Until != nil {
		conds = append(conds, "logged_at < ?")
		args = append(args, *f.Until)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// StreamLogEntries returns rows for export in logged_at order. The caller
// must close the rows and scan them with ScanLogEntryFromRows.
func StreamLogEntries(ctx context.Context, q querier, includeDeleted bool) (*sql.Rows, error) {
	query := `SELECT ` + logColumns + ` FROM log_entries`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY logged_at ASC, id ASC`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return rows, nil
}

// ScanLogEntryFromRows scans the current row of StreamLogEntries.
func ScanLogEntryFromRows(rows *sql.Rows) (*LogEntry, error) {
	return scanLogEntry(rows)
}

// SoftDeleteLogEntry marks an active entry deleted.
func SoftDeleteLogEntry(ctx context.Context, q querier, id string) error {
	res, err := q.ExecContext(ctx,
		`UPDATE log_entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().Unix(), id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("log entry", id)
	}
	return nil
}

// PurgeDeletedLogEntries permanently removes soft-deleted entries. When
// olderThanDays is set, only entries deleted before that many days ago go.
func PurgeDeletedLogEntries(ctx context.Context, q querier, olderThanDays *int) (int, error) {
	query := `DELETE FROM log_entries WHERE deleted_at IS NOT NULL`
	var args []any
	if olderThanDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*olderThanDays).Unix()
		query += ` AND deleted_at < ?`
		args = append(args, cutoff)
	}

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLogEntry(s scanner) (*LogEntry, error) {
	var (
		e         LogEntry
		workout   sql.NullString
		slotID    sql.NullString
		deletedAt sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.Exercise, &e.Sets, &e.Reps, &e.Weight,
		&workout, &slotID, &e.LoggedAt, &deletedAt); err != nil {
		return nil, err
	}
	e.Workout = fromNullString(workout)
	e.SlotID = fromNullString(slotID)
	if deletedAt.Valid {
		e.DeletedAt = &deletedAt.Int64
	}
	return &e, nil
}

// toNullString converts *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func toNullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}
