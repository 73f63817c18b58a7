package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/bromo/internal/db"
	"github.com/hpungsan/bromo/internal/errors"
)

// FilterAddOutput reports whether the word was new.
type FilterAddOutput struct {
	Word  string `json:"word"`
	Norm  string `json:"norm"`
	Added bool   `json:"added"`
}

// FilterAdd stores a word excluded from every generated schedule.
func FilterAdd(ctx context.Context, database *sql.DB, word string) (*FilterAddOutput, error) {
	raw := strings.TrimSpace(word)
	norm := NormalizeWord(raw)
	if norm == "" {
		return nil, errors.NewInvalidRequest("word is required")
	}

	added, err := db.AddFilteredWord(ctx, database, raw, norm)
	if err != nil {
		return nil, err
	}
	return &FilterAddOutput{Word: raw, Norm: norm, Added: added}, nil
}

// FilterListOutput lists stored and configured words.
type FilterListOutput struct {
	Stored     []db.FilteredWord `json:"stored"`
	Configured []string          `json:"configured"`
}

// FilterList returns stored words, plus configured words when configured is non-nil.
func FilterList(ctx context.Context, database *sql.DB, configured []string) (*FilterListOutput, error) {
	words, err := db.ListFilteredWords(ctx, database)
	if err != nil {
		return nil, err
	}
	if words == nil {
		words = []db.FilteredWord{}
	}
	if configured == nil {
		configured = []string{}
	}
	return &FilterListOutput{Stored: words, Configured: configured}, nil
}

// FilterRemoveOutput contains the removed word.
type FilterRemoveOutput struct {
	Removed bool   `json:"removed"`
	Norm    string `json:"norm"`
}

// FilterRemove deletes a stored word. Matching is case-insensitive.
func FilterRemove(ctx context.Context, database *sql.DB, word string) (*FilterRemoveOutput, error) {
	norm := NormalizeWord(word)
	if norm == "" {
		return nil, errors.NewInvalidRequest("word is required")
	}
	if err := db.RemoveFilteredWord(ctx, database, norm); err != nil {
		return nil, err
	}
	return &FilterRemoveOutput{Removed: true, Norm: norm}, nil
}
