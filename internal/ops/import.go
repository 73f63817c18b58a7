package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/db"
	"github.com/hpungsan/bromo/internal/errors"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision (atomic)
	ImportModeReplace ImportMode = "replace" // overwrite on collision
	ImportModeRename  ImportMode = "rename"  // assign a new id on collision
)

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError describes one line that was not imported.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type importRecord struct {
	line  int
	entry db.LogEntry
}

// exportLine decodes either the header or a log entry.
type exportLine struct {
	BromoExport bool `json:"_bromo_export"`
	db.LogEntry
}

// Import loads log entries from a file written by Export.
//
// In error mode the whole file is applied in one transaction and nothing is
// written if any line is malformed or any id already exists. The other modes
// skip bad lines and report them.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	switch input.Mode {
	case ImportModeError, ImportModeReplace, ImportModeRename:
	default:
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace, rename")
	}
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openNoFollow(input.Path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, bad := parseExport(file)
	out := &ImportOutput{Errors: []ImportError{}}

	if input.Mode == ImportModeError {
		if len(bad) > 0 {
			out.Errors = bad
			return out, nil
		}
		return importAtomic(ctx, database, records)
	}

	out.Errors = append(out.Errors, bad...)
	out.Skipped = len(bad)
	for _, r := range records {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("import")
		}
		e := r.entry
		var err error
		if input.Mode == ImportModeReplace {
			err = db.ReplaceLogEntry(ctx, database, &e)
		} else {
			err = insertRenaming(ctx, database, &e)
		}
		if err != nil {
			out.Errors = append(out.Errors, ImportError{
				Line: r.line, ID: r.entry.ID, Code: "INSERT_FAILED",
				Message: fmt.Sprintf("failed to insert: %v", err),
			})
			out.Skipped++
			continue
		}
		out.Imported++
	}
	return out, nil
}

func parseExport(r io.Reader) ([]importRecord, []ImportError) {
	var (
		records []importRecord
		bad     []ImportError
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for sc.Scan() {
		n++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}

		var l exportLine
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			bad = append(bad, ImportError{Line: n, Code: "PARSE_ERROR", Message: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}
		if l.BromoExport {
			continue
		}
		if msg := checkEntry(l.LogEntry); msg != "" {
			bad = append(bad, ImportError{Line: n, ID: l.ID, Code: "INVALID_RECORD", Message: msg})
			continue
		}
		records = append(records, importRecord{line: n, entry: l.LogEntry})
	}
	if err := sc.Err(); err != nil {
		bad = append(bad, ImportError{Line: n, Code: "READ_ERROR", Message: fmt.Sprintf("failed to read file: %v", err)})
	}
	return records, bad
}

func checkEntry(e db.LogEntry) string {
	switch {
	case e.ID == "":
		return "missing id field"
	case strings.TrimSpace(e.Exercise) == "":
		return "missing exercise field"
	case e.Sets < 0 || e.Reps < 0 || e.Weight < 0:
		return "sets, reps and weight must not be negative"
	case e.LoggedAt == 0:
		return "missing logged_at field"
	}
	return ""
}

func importAtomic(ctx context.Context, database *sql.DB, records []importRecord) (*ImportOutput, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, r := range records {
		if _, err := db.GetLogEntry(ctx, tx, r.entry.ID, true); err == nil {
			return &ImportOutput{Errors: []ImportError{{
				Line: r.line, ID: r.entry.ID, Code: "ID_COLLISION",
				Message: fmt.Sprintf("log entry with id %q already exists", r.entry.ID),
			}}}, nil
		} else if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}

		e := r.entry
		if err := db.InsertLogEntry(ctx, tx, &e); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ImportOutput{Imported: len(records), Errors: []ImportError{}}, nil
}

// insertRenaming inserts e, assigning a fresh id if its id is taken.
func insertRenaming(ctx context.Context, database *sql.DB, e *db.LogEntry) error {
	_, err := db.GetLogEntry(ctx, database, e.ID, true)
	switch {
	case err == nil:
		e.ID = newID(time.Now())
	case !errors.Is(err, errors.ErrNotFound):
		return err
	}
	return db.InsertLogEntry(ctx, database, e)
}
