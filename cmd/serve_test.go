package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sells-group/residential-checks/internal/model"
	"github.com/sells-group/residential-checks/internal/report"
)

func newTestRouter(t *testing.T) (http.Handler, *mockExtractor) {
	t.Helper()
	text := &mockExtractor{}
	text.On("ExtractText", mock.Anything, mock.Anything).Return(invoiceText, nil).Maybe()

	cfg := testConfig()
	env, err := initPipeline(cfg, envOptions{text: text})
	require.NoError(t, err)
	return buildRouter(env, cfg.Server), text
}

func multipartBody(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestServe_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServe_Metrics(t *testing.T) {
	router, _ := newTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "checks_http_requests_total")
}

func TestServe_Checks(t *testing.T) {
	router, text := newTestRouter(t)

	body, contentType := multipartBody(t, "GARCIA LOPEZ MARIA.zip", projectZIP(t, "GARCIA LOPEZ MARIA"))
	req := httptest.NewRequest(http.MethodPost, "/v1/checks", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "GARCIA LOPEZ MARIA_Checks.xlsx")
	assert.NotEmpty(t, rec.Header().Get("X-Run-ID"))
	text.AssertNumberOfCalls(t, "ExtractText", 1)

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	decided, err := excelize.CoordinatesToCellName(report.DecidedColumn(), 3)
	require.NoError(t, err)
	v, err := f.GetCellValue(report.DefaultSheetName, decided)
	require.NoError(t, err)
	assert.Equal(t, "Decided", v)

	invoice, err := excelize.CoordinatesToCellName(report.KindColumn(model.KindInvoice), 2)
	require.NoError(t, err)
	v, err = f.GetCellValue(report.DefaultSheetName, invoice)
	require.NoError(t, err)
	assert.Equal(t, "E1-3-3 FACTURA.pdf", v)
}

func TestServe_ExtractRawBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/extract?project=GARCIA%20LOPEZ%20MARIA", bytes.NewReader(projectZIP(t, "")))
	req.Header.Set("Content-Type", "application/zip")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Summary   runSummary `json:"summary"`
		Documents []struct {
			Kind model.DocumentKind `json:"kind"`
			Path string             `json:"path"`
		} `json:"documents"`
		Decisions struct {
			Decided int `json:"fields_decided"`
			Total   int `json:"fields_total"`
		} `json:"decisions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "GARCIA LOPEZ MARIA", resp.Summary.Project)
	assert.Equal(t, 2, resp.Summary.Documents)
	assert.Equal(t, "9500", resp.Summary.EnergySavings)
	assert.Equal(t, rec.Header().Get("X-Run-ID"), resp.Summary.RunID)

	paths := make(map[model.DocumentKind]string)
	for _, d := range resp.Documents {
		paths[d.Kind] = d.Path
	}
	assert.Equal(t, "E1-3-3 FACTURA.pdf", paths[model.KindInvoice])
	assert.Equal(t, "E1-4-2 CALCULO UI RTOTAL.xlsx", paths[model.KindCalculationSheet])
	assert.Positive(t, resp.Decisions.Decided)
	assert.GreaterOrEqual(t, resp.Decisions.Total, resp.Decisions.Decided)
}

func TestServe_BadUploads(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name string
		body io.Reader
	}{
		{"empty body", bytes.NewReader(nil)},
		{"not a zip", bytes.NewReader([]byte("plain text"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/extract", tt.body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestServe_MissingMultipartField(t *testing.T) {
	router, _ := newTestRouter(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/checks", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServe_UploadTooLarge(t *testing.T) {
	text := &mockExtractor{}
	cfg := testConfig()
	cfg.Server.MaxUploadMB = 1
	env, err := initPipeline(cfg, envOptions{text: text})
	require.NoError(t, err)
	router := buildRouter(env, cfg.Server)

	req := httptest.NewRequest(http.MethodPost, "/v1/checks", bytes.NewReader(make([]byte, 2<<20)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	text.AssertNotCalled(t, "ExtractText", mock.Anything, mock.Anything)
}

func TestProjectStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"GARCIA LOPEZ MARIA.zip", "GARCIA LOPEZ MARIA"},
		{`C:\uploads\PEREZ.zip`, "PEREZ"},
		{"../../etc/passwd", "passwd"},
		{"", "project"},
		{"..", "project"},
		{"  .zip", "project"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, projectStem(tt.in), tt.in)
	}
}

func TestRelativePath(t *testing.T) {
	assert.Equal(t, "sub/a.pdf", relativePath("/tmp/p", "/tmp/p/sub/a.pdf"))
	assert.Equal(t, "b.pdf", relativePath("/tmp/p", "/tmp/p/b.pdf"))
	assert.Equal(t, "rel.pdf", relativePath("/tmp/p", "rel.pdf"))
}

func TestCORSOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, corsOrigins(nil))
	assert.Equal(t, []string{"https://a.example"}, corsOrigins([]string{"https://a.example"}))
}
