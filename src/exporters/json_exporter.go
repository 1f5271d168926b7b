package exporters

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/models"
)

// WriteJSON renders the full report as indented JSON.
func WriteJSON(w io.Writer, report *models.TaxCalculationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding JSON report: %w", err)
	}
	logger.L.Info("JSON report exported", "calculationID", report.CalculationID)
	return nil
}
