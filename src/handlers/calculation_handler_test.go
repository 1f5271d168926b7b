package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/username/investinghurdle/backend/src/config"
	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/models"
	"github.com/username/investinghurdle/backend/src/quarters"
	"github.com/username/investinghurdle/backend/src/services"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	config.LoadConfig()
	os.Exit(m.Run())
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func sampleWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"Symbol", "Entry Date", "Exit Date", "Buy Value", "Sell Value", "Profit", "Period of Holding"},
		{"NIFTYBEES", "2024-05-10", "2024-05-10", 100000, 98000, -2000, 0},
		{"TCS", "2024-03-23", "2024-07-01", 10000, 12000, 2000, 100},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// uploadRequest builds a multipart POST with the payload under the "file"
// field, declaring contentType on the part.
func uploadRequest(t *testing.T, target, contentType string, payload []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="trades.xlsx"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newHandler() *CalculationHandler {
	return NewCalculationHandler(services.NewCalculationService(nil))
}

func TestHandleCalculate(t *testing.T) {
	req := uploadRequest(t, "/api/calculate", xlsxContentType, sampleWorkbook(t),
		map[string]string{"financialYear": "FY 2024-25", "quarterScheme": "Q5_IT_PORTAL"})
	rec := httptest.NewRecorder()

	newHandler().HandleCalculate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	var report models.TaxCalculationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "FY 2024-25", report.FinancialYear)
	assert.Equal(t, 2, report.RowsProcessed)
	assert.InDelta(t, 2000, report.STCG.Total, 1e-9)
	assert.InDelta(t, -2000, report.Speculation.Total, 1e-9)
	assert.InDelta(t, 2000, report.Speculation.Turnover, 1e-9)
}

func TestHandleCalculateDefaultsFromConfig(t *testing.T) {
	req := uploadRequest(t, "/api/calculate", xlsxContentType, sampleWorkbook(t), nil)
	rec := httptest.NewRecorder()

	newHandler().HandleCalculate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report models.TaxCalculationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, config.Cfg.DefaultFinancialYear, report.FinancialYear)
	assert.Equal(t, config.Cfg.DefaultQuarterScheme, report.QuarterScheme)
}

func TestHandleCalculateRejectsContentType(t *testing.T) {
	req := uploadRequest(t, "/api/calculate", "text/plain", sampleWorkbook(t), nil)
	rec := httptest.NewRecorder()

	newHandler().HandleCalculate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCalculateRejectsNonWorkbookBytes(t *testing.T) {
	req := uploadRequest(t, "/api/calculate", "application/octet-stream", []byte("plain text payload"), nil)
	rec := httptest.NewRecorder()

	newHandler().HandleCalculate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCalculateMissingFileField(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("financialYear", "FY 2024-25"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/calculate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	newHandler().HandleCalculate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCalculateBadFinancialYear(t *testing.T) {
	req := uploadRequest(t, "/api/calculate", xlsxContentType, sampleWorkbook(t),
		map[string]string{"financialYear": "not-a-year"})
	rec := httptest.NewRecorder()

	newHandler().HandleCalculate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExportCSV(t *testing.T) {
	req := uploadRequest(t, "/api/calculate/export/csv", xlsxContentType, sampleWorkbook(t), nil)
	rec := httptest.NewRecorder()

	newHandler().HandleExportCSV(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "tax-summary.csv")
	assert.Contains(t, rec.Body.String(), "Total STCG")
}

func TestHandleExportXLSX(t *testing.T) {
	req := uploadRequest(t, "/api/calculate/export/xlsx", xlsxContentType, sampleWorkbook(t), nil)
	rec := httptest.NewRecorder()

	newHandler().HandleExportXLSX(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Tax Summary"}, f.GetSheetList())
}

func TestHandleGetQuarters(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/quarters?financialYear=FY+2021-22&quarterScheme=STANDARD_Q4", nil)
	rec := httptest.NewRecorder()

	newHandler().HandleGetQuarters(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var calendar quarters.Calendar
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &calendar))
	assert.Equal(t, "FY 2021-22", calendar.FinancialYear)
	assert.Len(t, calendar.Quarters, 4)

	// Bad scheme is a client error.
	req = httptest.NewRequest(http.MethodGet, "/api/quarters?quarterScheme=NOPE", nil)
	rec = httptest.NewRecorder()
	newHandler().HandleGetQuarters(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIKeyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("disabled when no key configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		APIKeyMiddleware("")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("missing key rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		APIKeyMiddleware("secret")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "wrong")
		rec := httptest.NewRecorder()
		APIKeyMiddleware("secret")(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var errBody map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
		assert.Equal(t, "Invalid API key", errBody["error"])
	})

	t.Run("matching key accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-API-Key", "secret")
		rec := httptest.NewRecorder()
		APIKeyMiddleware("secret")(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
