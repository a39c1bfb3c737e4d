// Package reconcile computes the derived fields of an edited task record:
// real start/end auto-stamping when progress crosses 0% or 100%, and the
// edit stamp appended to the author cell.
package reconcile

import (
	"fmt"
	"regexp"
	"time"

	"github.com/victor-roliveira/interface-quanta/pkg/model"
)

// stampRe matches an existing edit stamp at the end of the author cell.
var stampRe = regexp.MustCompile(`\s*\(Editado em \d{2}/\d{2}/\d{4} \d{2}:\d{2}\)$`)

// Stamp renders the edit stamp for the given instant.
func Stamp(now time.Time) string {
	return fmt.Sprintf("(Editado em %s)", now.Format("02/01/2006 15:04"))
}

// BaseAuthor strips the trailing edit stamp, if any, returning the
// author name as originally recorded.
func BaseAuthor(author string) string {
	return stampRe.ReplaceAllString(author, "")
}

// RestampAuthor replaces an existing edit stamp with a fresh one, or
// appends one if the cell has none. The base name never changes here.
func RestampAuthor(author string, now time.Time) string {
	if stampRe.MatchString(author) {
		return stampRe.ReplaceAllString(author, " "+Stamp(now))
	}
	return author + " " + Stamp(now)
}

// Apply reconciles an edit: given the prior snapshot and the submitted
// values, it produces the record to persist. now must already be in the
// spreadsheet's timezone.
//
// The percent comparisons are exact against 0.0 and 100.0 as stored at
// one-decimal precision. A regression back to 0% or below 100% is not
// special-cased: stamps are set once and never cleared by edits.
func Apply(prev, submitted model.TaskRecord, now time.Time) model.TaskRecord {
	out := submitted

	out.RealStart = prev.RealStart
	if prev.PercentComplete == 0.0 && submitted.PercentComplete > 0.0 {
		out.RealStart = today(now)
	}

	out.RealEnd = prev.RealEnd
	if prev.PercentComplete < 100.0 && submitted.PercentComplete == 100.0 {
		out.RealEnd = today(now)
	}

	// The author base is immutable after creation: it is sourced from the
	// prior snapshot, not from any form field.
	out.Author = RestampAuthor(prev.Author, now)

	// Revision dates have no form input; they ride along unchanged.
	out.DocRevision = prev.DocRevision
	out.ProjectRevision = prev.ProjectRevision

	return out
}

func today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
