// Package locate finds the spreadsheet row of a task by its natural key.
package locate

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/victor-roliveira/interface-quanta/pkg/model"
)

// ErrNotFound means no row matched the key. The caller must tell the
// user to reload the table rather than guess a fallback row.
var ErrNotFound = errors.New("task not found in spreadsheet")

// Locate returns the 1-based sheet row (>= 2) of the record matching
// key. Matching is case-insensitive across all three key components.
//
// Duplicates should not exist (uniqueness is enforced at insert time),
// but if they do the first row in spreadsheet order wins; the extra
// matches are logged, not rejected.
func Locate(records []model.TaskRecord, key model.Key) (int, error) {
	found := -1
	for i, r := range records {
		if !r.Key().Equal(key) {
			continue
		}
		if found >= 0 {
			log.Warn().
				Str("edt", key.EDT).
				Str("os", key.WorkOrder).
				Str("task", key.TaskName).
				Int("kept_row", found+model.HeaderRows+1).
				Int("duplicate_row", i+model.HeaderRows+1).
				Msg("duplicate task key; keeping first match")
			continue
		}
		found = i
	}
	if found < 0 {
		return 0, ErrNotFound
	}
	return found + model.HeaderRows + 1, nil
}

// Exists reports whether any record matches key. Used for the
// insert-time uniqueness check.
func Exists(records []model.TaskRecord, key model.Key) bool {
	for _, r := range records {
		if r.Key().Equal(key) {
			return true
		}
	}
	return false
}
