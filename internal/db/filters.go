package db

import (
	"context"
	"time"

	"github.com/hpungsan/bromo/internal/errors"
)

// FilteredWord is a stored exclusion word.
type FilteredWord struct {
	Norm      string `json:"norm"`
	Raw       string `json:"word"`
	CreatedAt int64  `json:"created_at"`
}

// AddFilteredWord stores a word. It reports false if the normalized form was
// already present, in which case the stored row is unchanged.
func AddFilteredWord(ctx context.Context, q querier, raw, norm string) (bool, error) {
	res, err := q.ExecContext(ctx,
		`INSERT OR IGNORE INTO filtered_words (word_norm, word_raw, created_at) VALUES (?, ?, ?)`,
		norm, raw, time.Now().Unix())
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// ListFilteredWords returns every stored word ordered by normalized form.
func ListFilteredWords(ctx context.Context, q querier) ([]FilteredWord, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT word_norm, word_raw, created_at FROM filtered_words ORDER BY word_norm`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var words []FilteredWord
	for rows.Next() {
		var w FilteredWord
		if err := rows.Scan(&w.Norm, &w.Raw, &w.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return words, nil
}

// RemoveFilteredWord deletes a word by normalized form.
func RemoveFilteredWord(ctx context.Context, q querier, norm string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM filtered_words WHERE word_norm = ?`, norm)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound("filtered word", norm)
	}
	return nil
}
