package sheet

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/victor-roliveira/interface-quanta/pkg/auth"
)

// ErrAppendAmbiguous means the append succeeded but the service response
// did not say which row was written.
var ErrAppendAmbiguous = errors.New("append response did not report the written row")

// SchemaError is a fatal mismatch between the live header row and the
// expected column list. The message names the first out-of-place column,
// or the missing columns, so the spreadsheet owner can fix the sheet.
type SchemaError struct {
	// Missing lists expected columns absent from the live header.
	Missing []string
	// Position is the 1-based position of the first cell that differs
	// from the expected column order, 0 when the counts differ.
	Position int
	Found    string
	Expected string
	Got      int
	Want     int
}

func (e *SchemaError) Error() string {
	switch {
	case e.Position > 0:
		return fmt.Sprintf("spreadsheet header mismatch: column %d is %q, want %q",
			e.Position, e.Found, e.Expected)
	case len(e.Missing) > 0:
		return fmt.Sprintf("spreadsheet header mismatch (%d columns, want %d); missing: %s",
			e.Got, e.Want, strings.Join(e.Missing, ", "))
	default:
		return fmt.Sprintf("spreadsheet header mismatch (%d columns, want %d)", e.Got, e.Want)
	}
}

// classify maps remote API failures onto the module's error taxonomy.
// 401/403 become credential errors; everything else passes through for
// the caller to surface and retry manually.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == 401 || gerr.Code == 403) {
		return &auth.Error{Err: err}
	}
	return err
}
