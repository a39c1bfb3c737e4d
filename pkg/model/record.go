// Package model defines the task record and the spreadsheet row shape.
package model

import (
	"strings"
	"time"

	"github.com/victor-roliveira/interface-quanta/pkg/codec"
)

// HeaderRows is the number of reserved rows before the first record:
// row 1 carries the column headers, so records start at sheet row 2.
const HeaderRows = 1

// Columns is the ordered header row of the tracking spreadsheet. It is
// the single source of truth for row shape: every write emits exactly
// these cells, in this order, with missing fields as empty strings.
var Columns = []string{
	"% CONCLUIDA",
	"MEMORIAL DE CÁLCULO",
	"MEMORIAL DE DESCRITIVO",
	"EDT",
	"OS",
	"PRODUTO",
	"NOME DA OS",
	"TIPO DE PROJETO",
	"NOME DA TAREFA",
	"DISCIPLINA",
	"SUBDISCIPLINA",
	"AUTOR",
	"RESPONSAVEL TÉCNICO (Lider)",
	"INÍCIO CONTRATUAL",
	"TÉRMINO CONTRATUAL",
	"INÍCIO REAL",
	"TÉRMINO REAL",
	"DATA REVISÃO DOC",
	"DATA REVISÃO PROJETO",
	"DURAÇÃO PLANEJADA (DIAS)",
	"DURAÇÃO REAL (DIAS)",
	"% AVANÇO PLANEJADO",
	"% AVANÇO REAL",
	"HH Orçado",
	"BCWS_HH",
	"BCWP_HH",
	"ACWP_HH",
	"SPI_HH",
	"CPI_HH",
	"EAC_HH",
	"OBSERVAÇÕES",
}

// TaskRecord is one task, one spreadsheet row. Date fields use the zero
// time for "absent". The hour and earned-value figures stay opaque
// strings: operators type formulas and blanks into those cells, so they
// are never assumed numeric.
type TaskRecord struct {
	PercentComplete float64

	CalcMemo string
	DescMemo string

	EDT           string
	WorkOrder     string
	Product       string
	WorkOrderName string
	ProjectType   string
	TaskName      string
	Discipline    string
	SubDiscipline string
	Author        string
	TechnicalLead string

	ContractStart   time.Time
	ContractEnd     time.Time
	RealStart       time.Time
	RealEnd         time.Time
	DocRevision     time.Time
	ProjectRevision time.Time

	PlannedDays int
	ActualDays  int

	PlannedProgress float64
	ActualProgress  float64

	BudgetHours string
	BCWS        string
	BCWP        string
	ACWP        string
	SPI         string
	CPI         string
	EAC         string

	Observations string
}

// Key is the natural key of a task. No single column is unique on its
// own; the triple is, compared case-insensitively.
type Key struct {
	EDT       string
	WorkOrder string
	TaskName  string
}

// Key returns the record's natural key.
func (r TaskRecord) Key() Key {
	return Key{EDT: r.EDT, WorkOrder: r.WorkOrder, TaskName: r.TaskName}
}

// Equal reports case-insensitive equality of two keys.
func (k Key) Equal(other Key) bool {
	return strings.EqualFold(k.EDT, other.EDT) &&
		strings.EqualFold(k.WorkOrder, other.WorkOrder) &&
		strings.EqualFold(k.TaskName, other.TaskName)
}

// FromRow decodes one spreadsheet row into a record. The row may be
// shorter than Columns (trailing blank cells are dropped by the API);
// missing cells decode as empty.
func FromRow(values []string) TaskRecord {
	cell := func(i int) string {
		if i < len(values) {
			return values[i]
		}
		return ""
	}
	return TaskRecord{
		PercentComplete: codec.ParsePercent(cell(0)),
		CalcMemo:        cell(1),
		DescMemo:        cell(2),
		EDT:             cell(3),
		WorkOrder:       cell(4),
		Product:         cell(5),
		WorkOrderName:   cell(6),
		ProjectType:     cell(7),
		TaskName:        cell(8),
		Discipline:      cell(9),
		SubDiscipline:   cell(10),
		Author:          cell(11),
		TechnicalLead:   cell(12),
		ContractStart:   codec.ParseDate(cell(13)),
		ContractEnd:     codec.ParseDate(cell(14)),
		RealStart:       codec.ParseDate(cell(15)),
		RealEnd:         codec.ParseDate(cell(16)),
		DocRevision:     codec.ParseDate(cell(17)),
		ProjectRevision: codec.ParseDate(cell(18)),
		PlannedDays:     codec.ParseInt(cell(19)),
		ActualDays:      codec.ParseInt(cell(20)),
		PlannedProgress: codec.ParsePercent(cell(21)),
		ActualProgress:  codec.ParsePercent(cell(22)),
		BudgetHours:     cell(23),
		BCWS:            cell(24),
		BCWP:            cell(25),
		ACWP:            cell(26),
		SPI:             cell(27),
		CPI:             cell(28),
		EAC:             cell(29),
		Observations:    cell(30),
	}
}

// Row encodes the record as the ordered cell values to persist. Percent
// cells are written with one decimal and no "%"; absent dates as "".
func (r TaskRecord) Row() []string {
	return []string{
		codec.FormatPercent(r.PercentComplete),
		r.CalcMemo,
		r.DescMemo,
		r.EDT,
		r.WorkOrder,
		r.Product,
		r.WorkOrderName,
		r.ProjectType,
		r.TaskName,
		r.Discipline,
		r.SubDiscipline,
		r.Author,
		r.TechnicalLead,
		codec.FormatDate(r.ContractStart),
		codec.FormatDate(r.ContractEnd),
		codec.FormatDate(r.RealStart),
		codec.FormatDate(r.RealEnd),
		codec.FormatDate(r.DocRevision),
		codec.FormatDate(r.ProjectRevision),
		codec.FormatInt(r.PlannedDays),
		codec.FormatInt(r.ActualDays),
		codec.FormatPercent(r.PlannedProgress),
		codec.FormatPercent(r.ActualProgress),
		r.BudgetHours,
		r.BCWS,
		r.BCWP,
		r.ACWP,
		r.SPI,
		r.CPI,
		r.EAC,
		r.Observations,
	}
}
