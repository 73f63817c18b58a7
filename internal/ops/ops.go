// Package ops implements the operations shared by the CLI, MCP server and
// web server.
package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/bromo/internal/config"
	"github.com/hpungsan/bromo/internal/db"
	"github.com/hpungsan/bromo/internal/picker"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return min(limit, MaxListLimit)
}

// newID returns a fresh ULID string.
func newID(now time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(now), entropy).String()
}

// NormalizeWord returns the stored form of a filter word.
func NormalizeWord(w string) string {
	return picker.Fold(strings.Join(strings.Fields(w), " "))
}

// ExclusionWords gathers the words every schedule avoids: configured filter
// words, stored filter words, then extra. database may be nil.
func ExclusionWords(ctx context.Context, database *sql.DB, cfg *config.Config, extra []string) ([]string, error) {
	var words []string
	if cfg != nil {
		words = append(words, cfg.FilteredWords...)
	}
	if database != nil {
		stored, err := db.ListFilteredWords(ctx, database)
		if err != nil {
			return nil, err
		}
		for _, w := range stored {
			words = append(words, w.Raw)
		}
	}
	return append(words, extra...), nil
}
