package web

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victor-roliveira/interface-quanta/pkg/config"
	"github.com/victor-roliveira/interface-quanta/pkg/model"
	"github.com/victor-roliveira/interface-quanta/pkg/tasks"
)

type fakeGateway struct {
	records       []model.TaskRecord
	updatedRow    int
	updatedValues []string
	appended      [][]string
}

func (f *fakeGateway) FetchAll(_ context.Context) ([]model.TaskRecord, error) {
	return f.records, nil
}

func (f *fakeGateway) UpdateRow(_ context.Context, rowIndex int, values []string) error {
	f.updatedRow = rowIndex
	f.updatedValues = values
	return nil
}

func (f *fakeGateway) Append(_ context.Context, values []string) (int, error) {
	f.appended = append(f.appended, values)
	return model.HeaderRows + len(f.records) + len(f.appended), nil
}

func newTestServer(t *testing.T, gw *fakeGateway) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Worksheet: "Página1",
		Authors:   []string{"ALEXANDRE", "CAROLINA"},
		Editors:   map[string]string{"lider@quanta.eng.br": "segredo"},
	}
	srv, err := NewServer(tasks.NewService(gw, time.UTC), cfg)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, readAll(t, resp)
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	buf := new(strings.Builder)
	_, err := io.Copy(buf, resp.Body)
	require.NoError(t, err)
	return buf.String()
}

func postForm(t *testing.T, url string, form url.Values) (int, string) {
	t.Helper()
	resp, err := http.PostForm(url, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, readAll(t, resp)
}

func sampleRecord() model.TaskRecord {
	return model.TaskRecord{
		PercentComplete: 40.0,
		EDT:             "1.2.3",
		WorkOrder:       "OS-7",
		TaskName:        "Fluxograma geral",
		Author:          "ALEXANDRE",
	}
}

func TestViewRendersTable(t *testing.T) {
	gw := &fakeGateway{records: []model.TaskRecord{sampleRecord()}}
	ts := newTestServer(t, gw)

	code, body := get(t, ts.URL+"/view")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Fluxograma geral")
	assert.Contains(t, body, "40.0%", "percent column carries the display suffix")
	assert.Contains(t, body, "% CONCLUIDA")
}

func TestInsertSuccess(t *testing.T) {
	gw := &fakeGateway{}
	ts := newTestServer(t, gw)

	code, body := postForm(t, ts.URL+"/insert", url.Values{
		"edt":     {"1.2.3"},
		"os":      {"OS-7"},
		"task":    {"Fluxograma geral"},
		"author":  {"ALEXANDRE"},
		"percent": {"0"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "linha 2")
	require.Len(t, gw.appended, 1)
}

func TestInsertDuplicateShowsError(t *testing.T) {
	gw := &fakeGateway{records: []model.TaskRecord{sampleRecord()}}
	ts := newTestServer(t, gw)

	code, body := postForm(t, ts.URL+"/insert", url.Values{
		"edt":    {"1.2.3"},
		"os":     {"os-7"},
		"task":   {"FLUXOGRAMA GERAL"},
		"author": {"CAROLINA"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Já existe uma tarefa")
	assert.Empty(t, gw.appended)
}

func TestEditPickerListsOpenTasks(t *testing.T) {
	done := sampleRecord()
	done.TaskName = "concluída"
	done.PercentComplete = 100.0
	gw := &fakeGateway{records: []model.TaskRecord{sampleRecord(), done}}
	ts := newTestServer(t, gw)

	code, body := get(t, ts.URL+"/edit?author=ALEXANDRE")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "OS: OS-7 / EDT: 1.2.3 / Tarefa: Fluxograma geral")
	assert.NotContains(t, body, "concluída", "finished tasks stay out of the picker")
}

func TestEditRejectsBadCredentials(t *testing.T) {
	gw := &fakeGateway{records: []model.TaskRecord{sampleRecord()}}
	ts := newTestServer(t, gw)

	code, body := postForm(t, ts.URL+"/edit", url.Values{
		"edt":      {"1.2.3"},
		"os":       {"OS-7"},
		"task":     {"Fluxograma geral"},
		"percent":  {"80"},
		"email":    {"lider@quanta.eng.br"},
		"password": {"errada"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "E-mail ou senha de editor inválidos")
	assert.Zero(t, gw.updatedRow, "rejected submits must not write")
}

func TestEditUpdatesRow(t *testing.T) {
	gw := &fakeGateway{records: []model.TaskRecord{sampleRecord()}}
	ts := newTestServer(t, gw)

	code, body := postForm(t, ts.URL+"/edit", url.Values{
		"edt":      {"1.2.3"},
		"os":       {"OS-7"},
		"task":     {"Fluxograma geral"},
		"author":   {"ALEXANDRE"},
		"percent":  {"80"},
		"email":    {"LIDER@quanta.eng.br"},
		"password": {"segredo"},
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Tarefa atualizada com sucesso")
	assert.Equal(t, 2, gw.updatedRow)
	require.Len(t, gw.updatedValues, len(model.Columns))
	assert.Equal(t, "80.0", gw.updatedValues[0])
	assert.Contains(t, gw.updatedValues[11], "(Editado em ", "author picks up the edit stamp")
}

func TestEditPercentQuantizedToOneDecimal(t *testing.T) {
	rec := sampleRecord()
	rec.PercentComplete = 99.0
	gw := &fakeGateway{records: []model.TaskRecord{rec}}
	ts := newTestServer(t, gw)

	form := url.Values{
		"edt":      {"1.2.3"},
		"os":       {"OS-7"},
		"task":     {"Fluxograma geral"},
		"author":   {"ALEXANDRE"},
		"percent":  {"99.96"},
		"email":    {"lider@quanta.eng.br"},
		"password": {"segredo"},
	}
	code, _ := postForm(t, ts.URL+"/edit", form)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "100.0", gw.updatedValues[0])
	assert.NotEmpty(t, gw.updatedValues[16], "a cell persisted as 100.0 must stamp TÉRMINO REAL")

	// Just under the rounding boundary: stored as 99.9, no stamp.
	gw.records[0].PercentComplete = 99.0
	form.Set("percent", "99.94")
	code, _ = postForm(t, ts.URL+"/edit", form)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "99.9", gw.updatedValues[0])
	assert.Empty(t, gw.updatedValues[16])
}

func TestEditUnknownTask(t *testing.T) {
	gw := &fakeGateway{}
	ts := newTestServer(t, gw)

	code, body := get(t, ts.URL+"/edit?edt=9.9&os=OS-1&task=inexistente")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "não foi encontrada na planilha")
}
