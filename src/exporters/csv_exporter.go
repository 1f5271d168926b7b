// Package exporters renders a TaxCalculationResult into downloadable report
// files (CSV, JSON, xlsx).
package exporters

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/models"
)

// WriteCSV renders the summary report as CSV sections: header metadata,
// per-category totals, then one quarterly table per category.
func WriteCSV(w io.Writer, report *models.TaxCalculationResult) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		{"InvestingHurdle - Tax Calculation Summary Report"},
		{"Generated", report.CalculatedAt},
		{"Financial Year", report.FinancialYear},
		{"Quarter Scheme", report.QuarterScheme},
		{"Broker", report.Broker},
		{"Auto Detected", fmt.Sprintf("%t", report.AutoDetected)},
		{"Rows Processed", fmt.Sprintf("%d", report.RowsProcessed)},
		{},
		{"Short-Term Capital Gains (STCG)"},
		{"Metric", "Amount"},
		{"Total Sell Value", amount(report.STCG.FullValue)},
		{"Total Cost of Acquisition", amount(report.STCG.TotalCost)},
		{"Total STCG", amount(report.STCG.Total)},
		{},
		{"Long-Term Capital Gains (LTCG)"},
		{"Metric", "Amount"},
		{"Total Sell Value", amount(report.LTCG.FullValue)},
		{"Total Cost of Acquisition", amount(report.LTCG.TotalCost)},
		{"Total LTCG", amount(report.LTCG.Total)},
		{"Exemption", amount(report.LTCG.Exemption)},
		{"Taxable LTCG", amount(report.LTCG.TaxableLTCG)},
		{},
		{"Speculation / Intraday Trading"},
		{"Metric", "Amount"},
		{"Total Sell Value", amount(report.Speculation.FullValue)},
		{"Total Cost", amount(report.Speculation.TotalCost)},
		{"Total Profit/Loss", amount(report.Speculation.Total)},
		{"Total Turnover", amount(report.Speculation.Turnover)},
		{},
	}

	records = append(records, quarterSection("Quarterly STCG Breakdown", report.STCGQuarters, false)...)
	records = append(records, quarterSection("Quarterly LTCG Breakdown", report.LTCGQuarters, false)...)
	records = append(records, quarterSection("Quarterly Speculation Breakdown", report.SpeculationQuarters, true)...)

	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV report: %w", err)
	}

	logger.L.Info("CSV report exported", "calculationID", report.CalculationID)
	return nil
}

func quarterSection(title string, details []models.QuarterDetail, withTurnover bool) [][]string {
	header := []string{"Quarter", "Label", "Start", "End", "Amount", "Sell Value", "Buy Value"}
	if withTurnover {
		header = append(header, "Turnover")
	}
	records := [][]string{{title}, header}
	for _, q := range details {
		record := []string{
			q.Code, q.Label, q.StartDate, q.EndDate,
			amount(q.Amount), amount(q.SellValue), amount(q.BuyValue),
		}
		if withTurnover {
			record = append(record, amount(q.Turnover))
		}
		records = append(records, record)
	}
	return append(records, []string{})
}

func amount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
