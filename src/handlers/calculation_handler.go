package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/username/investinghurdle/backend/src/config"
	"github.com/username/investinghurdle/backend/src/exporters"
	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/models"
	"github.com/username/investinghurdle/backend/src/quarters"
	"github.com/username/investinghurdle/backend/src/security/validation"
	"github.com/username/investinghurdle/backend/src/services"
	"github.com/username/investinghurdle/backend/src/utils"
)

type CalculationHandler struct {
	calculationService services.CalculationService
}

func NewCalculationHandler(service services.CalculationService) *CalculationHandler {
	return &CalculationHandler{
		calculationService: service,
	}
}

// HandleCalculate accepts a multipart workbook upload plus optional
// financialYear / quarterScheme form fields and returns the calculation
// result as JSON.
func (h *CalculationHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runCalculation(w, r)
	if !ok {
		return
	}

	etag, err := utils.GenerateETag(report)
	if err == nil {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := exporters.WriteJSON(w, report); err != nil {
		logger.L.Error("JSON response encoding failed", "error", err)
	}
}

// HandleExportCSV runs the same calculation and streams a CSV report file.
func (h *CalculationHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runCalculation(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := exporters.WriteCSV(&buf, report); err != nil {
		logger.L.Error("CSV export failed", "error", err)
		utils.SendJSONError(w, "Failed to render CSV report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="tax-summary.csv"`)
	w.Write(buf.Bytes())
}

// HandleExportXLSX runs the same calculation and streams an xlsx summary.
func (h *CalculationHandler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runCalculation(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := exporters.WriteXLSX(&buf, report); err != nil {
		logger.L.Error("XLSX export failed", "error", err)
		utils.SendJSONError(w, "Failed to render xlsx report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="tax-summary.xlsx"`)
	w.Write(buf.Bytes())
}

// HandleGetQuarters previews the quarter calendar for a financial year and
// scheme without an upload.
func (h *CalculationHandler) HandleGetQuarters(w http.ResponseWriter, r *http.Request) {
	financialYear := r.URL.Query().Get("financialYear")
	if financialYear == "" {
		financialYear = config.Cfg.DefaultFinancialYear
	}
	scheme, err := quarters.ParseScheme(r.URL.Query().Get("quarterScheme"))
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	calendar, err := quarters.ForFinancialYear(financialYear, scheme)
	if err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(calendar)
}

// runCalculation parses and validates the upload, invokes the service, and
// writes the error response itself when anything fails.
func (h *CalculationHandler) runCalculation(w http.ResponseWriter, r *http.Request) (*models.TaxCalculationResult, bool) {
	if err := r.ParseMultipartForm(config.Cfg.MaxUploadSizeBytes); err != nil {
		logger.L.Warn("Failed to parse multipart form or request too large", "error", err, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, false
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		logger.L.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	if fileHeader.Size > config.Cfg.MaxUploadSizeBytes {
		logger.L.Warn("Uploaded file too large", "fileSize", fileHeader.Size, "limit", config.Cfg.MaxUploadSizeBytes)
		utils.SendJSONError(w, fmt.Sprintf("File too large, max %d MB", config.Cfg.MaxUploadSizeBytes/(1024*1024)), http.StatusBadRequest)
		return nil, false
	}

	if err := validateUpload(file, fileHeader); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}

	financialYear := r.FormValue("financialYear")
	if financialYear == "" {
		financialYear = config.Cfg.DefaultFinancialYear
	}
	quarterScheme := r.FormValue("quarterScheme")
	if quarterScheme == "" {
		quarterScheme = config.Cfg.DefaultQuarterScheme
	}

	report, err := h.calculationService.CalculateFromUpload(file, financialYear, quarterScheme)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, services.ErrInvalidConfig), errors.Is(err, services.ErrMissingInput):
			status = http.StatusBadRequest
		case errors.Is(err, services.ErrWorkbookOpen):
			status = http.StatusUnprocessableEntity
		}
		logger.L.Warn("Calculation failed", "financialYear", financialYear, "scheme", quarterScheme, "error", err)
		utils.SendJSONError(w, err.Error(), status)
		return nil, false
	}
	return report, true
}

func validateUpload(file multipart.File, fileHeader *multipart.FileHeader) error {
	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		return err
	}
	return validation.ValidateWorkbookMagicBytes(file)
}
