// Package web serves the three form screens over the task spreadsheet:
// insert, edit and view. Plain html/template pages, no client-side state;
// every submit is one synchronous round trip to the spreadsheet.
package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/victor-roliveira/interface-quanta/pkg/auth"
	"github.com/victor-roliveira/interface-quanta/pkg/codec"
	"github.com/victor-roliveira/interface-quanta/pkg/config"
	"github.com/victor-roliveira/interface-quanta/pkg/locate"
	"github.com/victor-roliveira/interface-quanta/pkg/model"
	"github.com/victor-roliveira/interface-quanta/pkg/sheet"
	"github.com/victor-roliveira/interface-quanta/pkg/tasks"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server provides the web UI handlers and state.
type Server struct {
	svc  *tasks.Service
	cfg  *config.Config
	tmpl *template.Template
}

// NewServer parses the templates and wires the handlers.
func NewServer(svc *tasks.Service, cfg *config.Config) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fmtDate":    codec.FormatDate,
		"fmtPercent": codec.FormatPercent,
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{svc: svc, cfg: cfg, tmpl: tmpl}, nil
}

// Routes returns the router for the web UI.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /view", s.handleView)
	mux.HandleFunc("GET /insert", s.handleInsertForm)
	mux.HandleFunc("POST /insert", s.handleInsertSubmit)
	mux.HandleFunc("GET /edit", s.handleEditForm)
	mux.HandleFunc("POST /edit", s.handleEditSubmit)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", nil)
}

// viewPage is the data for the view screen: the full table with display
// formatting applied (percent suffix, DD/MM/YYYY dates).
type viewPage struct {
	Columns []string
	Rows    [][]string
	Error   string
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	page := viewPage{Columns: model.Columns}
	records, err := s.svc.List(r.Context())
	if err != nil {
		page.Error = userMessage(err)
		s.render(w, "view.html", page)
		return
	}
	for _, rec := range records {
		page.Rows = append(page.Rows, displayRow(rec))
	}
	s.render(w, "view.html", page)
}

// displayRow formats a record for the view table. Percent columns get
// their display-only "%" suffix; everything else keeps the persisted
// rendering.
func displayRow(rec model.TaskRecord) []string {
	row := rec.Row()
	row[0] = codec.DisplayPercent(rec.PercentComplete)
	row[21] = codec.DisplayPercent(rec.PlannedProgress)
	row[22] = codec.DisplayPercent(rec.ActualProgress)
	return row
}

// formPage is the data for the insert and edit screens.
type formPage struct {
	Authors []string
	Record  model.TaskRecord
	// Author filter and open-task picker state (edit screen).
	Author string
	Open   []openTask
	Picked bool
	// Outcome of the previous submit, if any.
	Error   string
	Message string
}

type openTask struct {
	Key   model.Key
	Label string
}

func (s *Server) handleInsertForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "insert.html", formPage{Authors: s.cfg.AuthorOptions()})
}

func (s *Server) handleInsertSubmit(w http.ResponseWriter, r *http.Request) {
	rec := recordFromForm(r)
	page := formPage{Authors: s.cfg.AuthorOptions(), Record: rec}

	row, err := s.svc.Insert(r.Context(), rec)
	if err != nil {
		page.Error = userMessage(err)
		s.render(w, "insert.html", page)
		return
	}

	page.Record = model.TaskRecord{}
	page.Message = fmt.Sprintf("Tarefa inserida com sucesso na linha %d da planilha.", row)
	s.render(w, "insert.html", page)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	page := formPage{Authors: s.cfg.AuthorOptions(), Author: r.URL.Query().Get("author")}

	key := keyFromQuery(r)
	switch {
	case key.EDT != "":
		rec, err := s.svc.Get(r.Context(), key)
		if err != nil {
			page.Error = userMessage(err)
			s.render(w, "edit.html", page)
			return
		}
		page.Record = rec
		page.Picked = true
	case page.Author != "":
		open, err := s.svc.OpenForAuthor(r.Context(), page.Author)
		if err != nil {
			page.Error = userMessage(err)
			s.render(w, "edit.html", page)
			return
		}
		for _, rec := range open {
			page.Open = append(page.Open, openTask{
				Key:   rec.Key(),
				Label: fmt.Sprintf("OS: %s / EDT: %s / Tarefa: %s", rec.WorkOrder, rec.EDT, rec.TaskName),
			})
		}
	}
	s.render(w, "edit.html", page)
}

func (s *Server) handleEditSubmit(w http.ResponseWriter, r *http.Request) {
	rec := recordFromForm(r)
	key := model.Key{
		EDT:       r.PostFormValue("edt"),
		WorkOrder: r.PostFormValue("os"),
		TaskName:  r.PostFormValue("task"),
	}
	page := formPage{
		Authors: s.cfg.AuthorOptions(),
		Author:  r.PostFormValue("filter_author"),
		Record:  rec,
		Picked:  true,
	}
	page.Record.EDT = key.EDT
	page.Record.WorkOrder = key.WorkOrder
	page.Record.TaskName = key.TaskName

	if !s.cfg.Authorize(r.PostFormValue("email"), r.PostFormValue("password")) {
		page.Error = "E-mail ou senha de editor inválidos."
		s.render(w, "edit.html", page)
		return
	}

	final, err := s.svc.Update(r.Context(), key, rec)
	if err != nil {
		page.Error = userMessage(err)
		s.render(w, "edit.html", page)
		return
	}

	page.Record = final
	page.Message = "Tarefa atualizada com sucesso."
	s.render(w, "edit.html", page)
}

// recordFromForm decodes the submitted fields. All parsing is forgiving,
// matching the cell codec: bad percents become 0, bad dates absent.
func recordFromForm(r *http.Request) model.TaskRecord {
	get := r.PostFormValue
	return model.TaskRecord{
		PercentComplete: clampPercent(codec.ParsePercent(get("percent"))),
		CalcMemo:        get("calc_memo"),
		DescMemo:        get("desc_memo"),
		EDT:             get("edt"),
		WorkOrder:       get("os"),
		Product:         get("product"),
		WorkOrderName:   get("os_name"),
		ProjectType:     get("project_type"),
		TaskName:        get("task"),
		Discipline:      get("discipline"),
		SubDiscipline:   get("subdiscipline"),
		Author:          get("author"),
		TechnicalLead:   get("lead"),
		ContractStart:   codec.ParseDate(get("contract_start")),
		ContractEnd:     codec.ParseDate(get("contract_end")),
		PlannedDays:     nonNegative(codec.ParseInt(get("planned_days"))),
		ActualDays:      nonNegative(codec.ParseInt(get("actual_days"))),
		PlannedProgress: clampPercent(codec.ParsePercent(get("planned_progress"))),
		ActualProgress:  clampPercent(codec.ParsePercent(get("actual_progress"))),
		BudgetHours:     get("hh_budget"),
		BCWS:            get("bcws"),
		BCWP:            get("bcwp"),
		ACWP:            get("acwp"),
		SPI:             get("spi"),
		CPI:             get("cpi"),
		EAC:             get("eac"),
		Observations:    get("notes"),
	}
}

func keyFromQuery(r *http.Request) model.Key {
	q := r.URL.Query()
	return model.Key{EDT: q.Get("edt"), WorkOrder: q.Get("os"), TaskName: q.Get("task")}
}

// clampPercent quantizes to the one-decimal precision the cells persist
// and bounds the result to [0, 100]. Without the rounding, a value like
// 99.96 would persist as "100.0" yet slip past the == 100.0 completion
// check while reconciling.
func clampPercent(f float64) float64 {
	f = math.Round(f*10) / 10
	if f < 0.0 {
		return 0.0
	}
	if f > 100.0 {
		return 100.0
	}
	return f
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// userMessage maps module errors onto the messages the screens show.
func userMessage(err error) string {
	var authErr *auth.Error
	var schemaErr *sheet.SchemaError
	switch {
	case errors.As(err, &authErr):
		return "Falha de autenticação com o Google Sheets. Verifique as credenciais."
	case errors.As(err, &schemaErr):
		return "A planilha não corresponde ao esquema esperado: " + schemaErr.Error()
	case errors.Is(err, tasks.ErrDuplicateKey):
		return "Já existe uma tarefa com esta combinação de EDT, Nome da Tarefa e OS."
	case errors.Is(err, tasks.ErrMissingRequired):
		return "Preencha os campos obrigatórios: " + err.Error()
	case errors.Is(err, locate.ErrNotFound):
		return "A tarefa selecionada não foi encontrada na planilha. Recarregue a página e tente novamente."
	default:
		return "Erro ao acessar a planilha: " + err.Error()
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
