package exporters

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/models"
)

const summarySheet = "Tax Summary"

// WriteXLSX renders a one-sheet workbook summary: totals per category on
// top, quarterly tables below.
func WriteXLSX(w io.Writer, report *models.TaxCalculationResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("renaming summary sheet: %w", err)
	}

	row := 1
	set := func(col int, value interface{}) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(summarySheet, cell, value)
	}
	writeRow := func(values ...interface{}) error {
		for i, v := range values {
			if err := set(i+1, v); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	lines := [][]interface{}{
		{"InvestingHurdle - Tax Summary"},
		{"Financial Year", report.FinancialYear},
		{"Quarter Scheme", report.QuarterScheme},
		{"Broker", report.Broker},
		{"Generated", report.CalculatedAt},
		{},
		{"Category", "Sell Value", "Cost", "Net"},
		{"STCG", report.STCG.FullValue, report.STCG.TotalCost, report.STCG.Total},
		{"LTCG", report.LTCG.FullValue, report.LTCG.TotalCost, report.LTCG.Total},
		{"Taxable LTCG (after exemption)", "", "", report.LTCG.TaxableLTCG},
		{"Speculation", report.Speculation.FullValue, report.Speculation.TotalCost, report.Speculation.Total},
		{"Speculation Turnover", "", "", report.Speculation.Turnover},
		{},
	}
	for _, line := range lines {
		if err := writeRow(line...); err != nil {
			return fmt.Errorf("writing summary rows: %w", err)
		}
	}

	sections := []struct {
		title        string
		details      []models.QuarterDetail
		withTurnover bool
	}{
		{"Quarterly STCG", report.STCGQuarters, false},
		{"Quarterly LTCG", report.LTCGQuarters, false},
		{"Quarterly Speculation", report.SpeculationQuarters, true},
	}
	for _, s := range sections {
		if err := writeRow(s.title); err != nil {
			return err
		}
		header := []interface{}{"Quarter", "Label", "Start", "End", "Amount", "Sell Value", "Buy Value"}
		if s.withTurnover {
			header = append(header, "Turnover")
		}
		if err := writeRow(header...); err != nil {
			return err
		}
		for _, q := range s.details {
			line := []interface{}{q.Code, q.Label, q.StartDate, q.EndDate, q.Amount, q.SellValue, q.BuyValue}
			if s.withTurnover {
				line = append(line, q.Turnover)
			}
			if err := writeRow(line...); err != nil {
				return err
			}
		}
		if err := writeRow(); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing xlsx report: %w", err)
	}
	logger.L.Info("XLSX report exported", "calculationID", report.CalculationID)
	return nil
}
