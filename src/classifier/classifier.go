// Package classifier walks worksheet rows under a FieldMap and buckets every
// closed position into STCG, LTCG or Speculation, with per-quarter
// aggregates taken from the sell date.
package classifier

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/models"
	"github.com/username/investinghurdle/backend/src/quarters"
)

// ErrSheetNotFound is returned when the FieldMap points at a sheet the
// workbook does not have. This is fatal for the whole calculation.
var ErrSheetNotFound = errors.New("data sheet not found")

// Holding-period cutoff between short-term and long-term, in days.
const longTermThresholdDays = 365

// CategoryTotals accumulates one tax category across the run. The quarter
// slices are indexed 0..len(calendar.Quarters)-1.
type CategoryTotals struct {
	BuyValue  float64
	SellValue float64
	Profit    float64
	Turnover  float64 // Speculation only

	QuarterAmount   []float64
	QuarterBuy      []float64
	QuarterSell     []float64
	QuarterTurnover []float64 // Speculation only
}

func newCategoryTotals(quarterCount int) CategoryTotals {
	return CategoryTotals{
		QuarterAmount:   make([]float64, quarterCount),
		QuarterBuy:      make([]float64, quarterCount),
		QuarterSell:     make([]float64, quarterCount),
		QuarterTurnover: make([]float64, quarterCount),
	}
}

// Result carries the aggregates of one classification run.
type Result struct {
	STCG        CategoryTotals
	LTCG        CategoryTotals
	Speculation CategoryTotals

	RowsProcessed int
	RowsSkipped   int
}

// Classifier is a single-use, single-threaded row engine. Construct one per
// calculation; it holds no state between Classify calls beyond its inputs.
type Classifier struct {
	mapping  *models.FieldMap
	calendar *quarters.Calendar
}

func New(mapping *models.FieldMap, calendar *quarters.Calendar) *Classifier {
	return &Classifier{mapping: mapping, calendar: calendar}
}

// Classify iterates the mapped data rows and returns category and quarter
// aggregates. A row that cannot be read is logged and skipped; only a
// missing sheet aborts the run.
func (c *Classifier) Classify(f *excelize.File) (*Result, error) {
	sheets := f.GetSheetList()
	if c.mapping.SheetIndex < 0 || c.mapping.SheetIndex >= len(sheets) {
		return nil, fmt.Errorf("%w: index %d, workbook has %d sheets",
			ErrSheetNotFound, c.mapping.SheetIndex, len(sheets))
	}
	sheetName := sheets[c.mapping.SheetIndex]

	// Raw values keep numeric cells unformatted and date cells as serials,
	// so one coercion path covers both typed and text cells.
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheetName, err)
	}

	qn := len(c.calendar.Quarters)
	result := &Result{
		STCG:        newCategoryTotals(qn),
		LTCG:        newCategoryTotals(qn),
		Speculation: newCategoryTotals(qn),
	}

	endRow := len(rows) - 1
	if c.mapping.DataEndRow != nil && *c.mapping.DataEndRow < endRow {
		endRow = *c.mapping.DataEndRow
	}

	for rowIdx := c.mapping.DataStartRow; rowIdx <= endRow; rowIdx++ {
		row := rows[rowIdx]
		if isRowEmpty(row) {
			continue
		}

		buyAmount := cellAsFloat(row, c.mapping.BuyAmountCol)
		sellAmount := cellAsFloat(row, c.mapping.SellAmountCol)
		if buyAmount == 0 && sellAmount == 0 {
			result.RowsSkipped++
			continue
		}

		daysHeld := int(cellAsFloat(row, c.mapping.DaysHeldCol))
		sellDate, hasSellDate := cellAsDate(row, c.mapping.SellDateCol)

		quarterIdx := 0
		if hasSellDate {
			quarterIdx = c.calendar.QuarterIndex(sellDate)
		}

		switch {
		case daysHeld == 0:
			// Intraday: bought and sold the same day.
			profit := sellAmount - buyAmount
			turnover := abs(profit)
			c.accumulate(&result.Speculation, quarterIdx, buyAmount, sellAmount, profit, turnover)

		case daysHeld <= longTermThresholdDays:
			profit := sellAmount - buyAmount
			if c.mapping.STCGCol >= 0 {
				profit = cellAsFloat(row, c.mapping.STCGCol)
			}
			c.accumulate(&result.STCG, quarterIdx, buyAmount, sellAmount, profit, 0)

		default:
			// Never read the STCG column here; it is scoped to short-term rows.
			profit := sellAmount - buyAmount
			c.accumulate(&result.LTCG, quarterIdx, buyAmount, sellAmount, profit, 0)
		}

		result.RowsProcessed++
	}

	logger.L.Info("Classification run complete",
		"sheet", sheetName,
		"rowsProcessed", result.RowsProcessed,
		"rowsSkipped", result.RowsSkipped,
		"stcgProfit", result.STCG.Profit,
		"ltcgProfit", result.LTCG.Profit,
		"speculationTurnover", result.Speculation.Turnover)

	return result, nil
}

// accumulate adds one row to a category's running totals, and to the quarter
// bucket when the sell date resolved to one (quarterIdx is 1-based, 0 = none).
func (c *Classifier) accumulate(cat *CategoryTotals, quarterIdx int, buy, sell, profit, turnover float64) {
	cat.BuyValue += buy
	cat.SellValue += sell
	cat.Profit += profit
	cat.Turnover += turnover

	if quarterIdx > 0 && quarterIdx <= len(cat.QuarterAmount) {
		i := quarterIdx - 1
		cat.QuarterAmount[i] += profit
		cat.QuarterBuy[i] += buy
		cat.QuarterSell[i] += sell
		cat.QuarterTurnover[i] += turnover
	}
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// cellAsFloat coerces a cell to a number. Text cells are stripped of
// thousands separators and currency symbols first. Missing columns,
// missing cells and unparsable text all come back as 0.
func cellAsFloat(row []string, col int) float64 {
	if col < 0 || col >= len(row) {
		return 0
	}
	value := strings.TrimSpace(row[col])
	if value == "" {
		return 0
	}
	cleaned := strings.NewReplacer(",", "", "₹", "", "$", "").Replace(value)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		logger.L.Debug("Unparsable numeric cell, treating as 0", "column", col, "value", value)
		return 0
	}
	return v
}

// cellAsDate reads a date cell: an Excel serial number or ISO-formatted
// text. An unreadable date yields false; the caller still accumulates the
// row into totals, just without a quarter bucket.
func cellAsDate(row []string, col int) (time.Time, bool) {
	if col < 0 || col >= len(row) {
		return time.Time{}, false
	}
	value := strings.TrimSpace(row[col])
	if value == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, true
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t, true
		}
	}

	logger.L.Warn("Could not parse sell date", "column", col, "value", value)
	return time.Time{}, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
