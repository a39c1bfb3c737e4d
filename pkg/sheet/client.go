// Package sheet is the gateway to the tracking spreadsheet. It wraps the
// three remote operations the rest of the module needs: read all rows,
// overwrite one row, append one row. None of them are transactional; a
// concurrent editor can still race a read-modify-write cycle.
package sheet

import (
	"context"
	"fmt"
	"regexp"

	"google.golang.org/api/sheets/v4"

	"github.com/victor-roliveira/interface-quanta/pkg/model"
)

// Client talks to one worksheet of one spreadsheet.
type Client struct {
	srv           *sheets.Service
	spreadsheetID string
	worksheet     string
}

// NewClient wraps an authenticated Sheets service.
func NewClient(srv *sheets.Service, spreadsheetID, worksheet string) *Client {
	return &Client{srv: srv, spreadsheetID: spreadsheetID, worksheet: worksheet}
}

// FetchAll reads the whole table. It validates the header row against
// model.Columns before decoding anything: a schema drift fails the whole
// load with a *SchemaError naming the missing columns.
func (c *Client) FetchAll(ctx context.Context) ([]model.TaskRecord, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, c.worksheet).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, classify(fmt.Errorf("fetch rows: %w", err))
	}

	if len(resp.Values) == 0 {
		return nil, &SchemaError{Got: 0, Want: len(model.Columns)}
	}

	header := cellStrings(resp.Values[0])
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	records := make([]model.TaskRecord, 0, len(resp.Values)-1)
	for _, row := range resp.Values[1:] {
		records = append(records, model.FromRow(cellStrings(row)))
	}
	return records, nil
}

// UpdateRow overwrites exactly one row, columns A through the width of
// values. rowIndex is 1-based; row 1 is the header, so valid indices
// start at 2.
func (c *Client) UpdateRow(ctx context.Context, rowIndex int, values []string) error {
	if rowIndex < model.HeaderRows+1 {
		return fmt.Errorf("row %d is reserved for the header", rowIndex)
	}

	rangeName := fmt.Sprintf("%s!A%d:%s%d", c.worksheet, rowIndex, columnLetter(len(values)), rowIndex)
	vr := &sheets.ValueRange{Values: [][]interface{}{cellValues(values)}}

	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, rangeName, vr).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return classify(fmt.Errorf("update row %d: %w", rowIndex, err))
	}
	return nil
}

// Append writes a new row after the last populated one and returns the
// 1-based row index the service reports having written.
func (c *Client) Append(ctx context.Context, values []string) (int, error) {
	vr := &sheets.ValueRange{Values: [][]interface{}{cellValues(values)}}

	resp, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, c.worksheet, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return 0, classify(fmt.Errorf("append row: %w", err))
	}

	if resp.Updates == nil {
		return 0, ErrAppendAmbiguous
	}
	return rowIndexFromRange(resp.Updates.UpdatedRange)
}

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// rowIndexFromRange extracts the row number from a range locator such as
// "Página1!A12:AE12".
func rowIndexFromRange(updatedRange string) (int, error) {
	m := trailingDigits.FindStringSubmatch(updatedRange)
	if m == nil {
		return 0, ErrAppendAmbiguous
	}
	var idx int
	if _, err := fmt.Sscanf(m[1], "%d", &idx); err != nil || idx < 1 {
		return 0, ErrAppendAmbiguous
	}
	return idx, nil
}

// columnLetter converts a 1-based column number to its A1-notation
// letters (1 -> A, 26 -> Z, 27 -> AA).
func columnLetter(n int) string {
	result := ""
	for n > 0 {
		n--
		result = string(rune('A'+n%26)) + result
		n /= 26
	}
	return result
}

// checkHeader compares the live header cell by cell against
// model.Columns. Order matters: rows are decoded positionally, so a
// reordered header would transpose every field even with all names
// present.
func checkHeader(header []string) error {
	if len(header) != len(model.Columns) {
		return &SchemaError{Missing: missingColumns(header), Got: len(header), Want: len(model.Columns)}
	}
	for i, want := range model.Columns {
		if header[i] != want {
			return &SchemaError{
				Missing:  missingColumns(header),
				Position: i + 1,
				Found:    header[i],
				Expected: want,
				Got:      len(header),
				Want:     len(model.Columns),
			}
		}
	}
	return nil
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, want := range model.Columns {
		if !present[want] {
			missing = append(missing, want)
		}
	}
	return missing
}

func cellStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if s, ok := v.(string); ok {
			out[i] = s
			continue
		}
		out[i] = fmt.Sprint(v)
	}
	return out
}

func cellValues(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
