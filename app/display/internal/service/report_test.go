package service

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iWorld-y/trend_radar/app/display/internal/data"
	"github.com/iWorld-y/trend_radar/app/display/internal/usecase"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/engine"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/model"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/pdfsource"
	"github.com/iWorld-y/trend_radar/app/trend_radar/pkg/storage"
)

func textGroup(text, font string, size, y0 float64) pdfsource.SpanGroup {
	box := model.Position{X0: 40, Y0: y0, X1: 500, Y1: y0 + size}
	return pdfsource.SpanGroup{
		Lines: [][]pdfsource.TextSpan{{{Text: text, FontName: font, FontSize: size, BBox: box}}},
		BBox:  box,
	}
}

func sampleReport() *pdfsource.Memory {
	intro := []pdfsource.SpanGroup{textGroup("Executive Summary October 2025", "Helvetica-Bold", 18, 40)}
	series := []pdfsource.SpanGroup{
		textGroup("US ISM PMI", "Helvetica-Bold", 16, 40),
		textGroup("• New orders rising • Inventories lean", "Helvetica", 10, 90),
	}
	return &pdfsource.Memory{
		Filename: "ITR Trends October 2025.pdf",
		Pages: []pdfsource.Page{
			{Text: pdfsource.PageText(intro), Groups: intro},
			{
				Text:   pdfsource.PageText(series),
				Groups: series,
				Images: []pdfsource.Image{{Xref: 3, Width: 400, Height: 300, Data: []byte{0x89}, MimeType: "image/png"}},
			},
		},
	}
}

type fixture struct {
	srv *http.Server
	doc *model.Document
}

func newFixture(t *testing.T) fixture {
	store, err := storage.NewBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.Default()
	cfg.Extraction.OutputDir = ""
	eng := engine.New(cfg, store, nil)
	doc, err := eng.Process(context.Background(), sampleReport())
	require.NoError(t, err)

	d := data.NewDataWithStore(store)
	uc := usecase.NewReportUseCase(data.NewReportRepo(d, log.DefaultLogger), eng, log.DefaultLogger)
	srv := http.NewServer()
	NewReportService(uc, 0, log.DefaultLogger).RegisterRoutes(srv)
	return fixture{srv: srv, doc: doc}
}

func (f fixture) do(t *testing.T, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	}
	return rec, body
}

func TestReportRoutes_Read(t *testing.T) {
	f := newFixture(t)
	id := f.doc.ReportID

	rec, body := f.do(t, nethttp.MethodGet, "/api/reports?page=1&page_size=5")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["total"])
	reports := body["reports"].([]interface{})
	require.Len(t, reports, 1)
	assert.Equal(t, id, reports[0].(map[string]interface{})["report_id"])

	rec, body = f.do(t, nethttp.MethodGet, "/api/reports/"+id)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "October 2025", body["report_period"])
	assert.Len(t, body["document_flow"], 2)

	rec, body = f.do(t, nethttp.MethodGet, "/api/reports/"+id+"/analysis")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.NotNil(t, body["overall_analysis"])

	rec, body = f.do(t, nethttp.MethodGet, "/api/reports/"+id+"/charts")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Len(t, body["charts"], 1)

	rec, body = f.do(t, nethttp.MethodGet, "/api/reports/"+id+"/series")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	series := body["series"].([]interface{})
	require.Len(t, series, 1)
	assert.Equal(t, "US ISM PMI", series[0].(map[string]interface{})["name"])

	rec, body = f.do(t, nethttp.MethodGet, "/api/reports/missing")
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	assert.Equal(t, "REPORT_NOT_FOUND", body["reason"])
}

func TestReportRoutes_RegenerateAndDelete(t *testing.T) {
	f := newFixture(t)
	id := f.doc.ReportID

	rec, body := f.do(t, nethttp.MethodPost, "/api/reports/"+id+"/regenerate")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	meta := body["analysis_metadata"].(map[string]interface{})
	assert.Equal(t, "1.1", meta["version"])
	assert.Equal(t, "1.0", meta["regenerated_from_version"])

	rec, _ = f.do(t, nethttp.MethodPost, "/api/reports/missing/regenerate")
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)

	rec, body = f.do(t, nethttp.MethodDelete, "/api/reports/"+id)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, true, body["deleted"])

	rec, _ = f.do(t, nethttp.MethodGet, "/api/reports/"+id)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
	rec, _ = f.do(t, nethttp.MethodDelete, "/api/reports/"+id)
	assert.Equal(t, nethttp.StatusNotFound, rec.Code)
}

func TestReportRoutes_UploadRejectsNonPDF(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/api/reports", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(nethttp.MethodPost, "/api/reports", nil)
	rec = httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}
