// Package tasks orchestrates the spreadsheet operations behind the three
// screens: insert a task, edit a task, list everything. Each call is one
// synchronous fetch-locate-reconcile-write sequence; the spreadsheet is
// accessed optimistically with no version check.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/victor-roliveira/interface-quanta/pkg/locate"
	"github.com/victor-roliveira/interface-quanta/pkg/model"
	"github.com/victor-roliveira/interface-quanta/pkg/reconcile"
)

// Gateway is the spreadsheet access the service needs. Satisfied by
// *sheet.Client; tests provide a fake.
type Gateway interface {
	FetchAll(ctx context.Context) ([]model.TaskRecord, error)
	UpdateRow(ctx context.Context, rowIndex int, values []string) error
	Append(ctx context.Context, values []string) (int, error)
}

// ErrDuplicateKey means a task with the same EDT, OS and task name
// already exists. Recoverable: the user is re-prompted.
var ErrDuplicateKey = errors.New("a task with this EDT, OS and task name already exists")

// ErrMissingRequired means a required field was left blank.
var ErrMissingRequired = errors.New("required field missing")

// Service implements the task operations over a Gateway.
type Service struct {
	gw  Gateway
	loc *time.Location
	now func() time.Time
}

// NewService creates a Service stamping derived dates in loc.
func NewService(gw Gateway, loc *time.Location) *Service {
	return &Service{gw: gw, loc: loc, now: time.Now}
}

// Insert validates and appends a new task, returning the sheet row it
// landed on. Validation happens before any remote write: required
// fields, then key uniqueness against the live table.
func (s *Service) Insert(ctx context.Context, rec model.TaskRecord) (int, error) {
	if err := checkRequired(rec); err != nil {
		return 0, err
	}

	records, err := s.gw.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	if locate.Exists(records, rec.Key()) {
		return 0, ErrDuplicateKey
	}

	today := dateIn(s.now(), s.loc)
	rec.RealStart = time.Time{}
	rec.RealEnd = time.Time{}
	if rec.PercentComplete > 0.0 {
		rec.RealStart = today
	}
	if rec.PercentComplete == 100.0 {
		rec.RealEnd = today
	}
	// Revision dates have no insert input; they start blank.
	rec.DocRevision = time.Time{}
	rec.ProjectRevision = time.Time{}

	row, err := s.gw.Append(ctx, rec.Row())
	if err != nil {
		return 0, err
	}
	log.Info().Int("row", row).Str("edt", rec.EDT).Str("os", rec.WorkOrder).
		Str("task", rec.TaskName).Msg("task inserted")
	return row, nil
}

// Get returns the record matching key, freshly fetched.
func (s *Service) Get(ctx context.Context, key model.Key) (model.TaskRecord, error) {
	records, err := s.gw.FetchAll(ctx)
	if err != nil {
		return model.TaskRecord{}, err
	}
	row, err := locate.Locate(records, key)
	if err != nil {
		return model.TaskRecord{}, err
	}
	return records[row-model.HeaderRows-1], nil
}

// Update re-fetches the table, locates the row for key, reconciles the
// submitted values against the prior snapshot and overwrites the row.
// The returned record is the one persisted.
func (s *Service) Update(ctx context.Context, key model.Key, submitted model.TaskRecord) (model.TaskRecord, error) {
	records, err := s.gw.FetchAll(ctx)
	if err != nil {
		return model.TaskRecord{}, err
	}

	row, err := locate.Locate(records, key)
	if err != nil {
		return model.TaskRecord{}, err
	}
	prev := records[row-model.HeaderRows-1]

	// Identity is locked after creation; the form cannot rename a task.
	submitted.EDT = prev.EDT
	submitted.WorkOrder = prev.WorkOrder
	submitted.TaskName = prev.TaskName

	final := reconcile.Apply(prev, submitted, s.now().In(s.loc))

	if err := s.gw.UpdateRow(ctx, row, final.Row()); err != nil {
		return model.TaskRecord{}, err
	}
	log.Info().Int("row", row).Str("edt", key.EDT).Str("os", key.WorkOrder).
		Str("task", key.TaskName).Msg("task updated")
	return final, nil
}

// List returns every record in spreadsheet order.
func (s *Service) List(ctx context.Context) ([]model.TaskRecord, error) {
	return s.gw.FetchAll(ctx)
}

// OpenForAuthor returns the author's tasks still short of 100%,
// matching on the author base name with any edit stamp stripped.
func (s *Service) OpenForAuthor(ctx context.Context, author string) ([]model.TaskRecord, error) {
	records, err := s.gw.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	var open []model.TaskRecord
	for _, r := range records {
		if strings.EqualFold(reconcile.BaseAuthor(r.Author), author) && r.PercentComplete < 100.0 {
			open = append(open, r)
		}
	}
	return open, nil
}

func checkRequired(rec model.TaskRecord) error {
	var missing []string
	if strings.TrimSpace(rec.EDT) == "" {
		missing = append(missing, "EDT")
	}
	if strings.TrimSpace(rec.WorkOrder) == "" {
		missing = append(missing, "OS")
	}
	if strings.TrimSpace(rec.TaskName) == "" {
		missing = append(missing, "NOME DA TAREFA")
	}
	if strings.TrimSpace(rec.Author) == "" {
		missing = append(missing, "AUTOR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}
	return nil
}

func dateIn(now time.Time, loc *time.Location) time.Time {
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
