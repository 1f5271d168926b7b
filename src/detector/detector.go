// Package detector inspects an unknown trade-ledger workbook and produces a
// best-effort FieldMap plus the likely broker, using sheet-name hints and
// header-text pattern matching.
package detector

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/models"
)

const (
	maxHeaderScanSheets = 3
	maxHeaderScanRows   = 30
	maxHintScanRows     = 10
)

// Result is the detection outcome. AutoDetected is false when no header row
// matched and the default template was substituted; the numbers produced
// from such a mapping are a caller-visible risk, not an error.
type Result struct {
	Broker       models.BrokerType
	Mapping      *models.FieldMap
	AutoDetected bool
	Message      string
}

type field int

const (
	fieldBuy field = iota
	fieldSell
	fieldDate
	fieldSymbol
	fieldDays
	fieldSTCG
	fieldSpeculation
	fieldQuantity
	// sellDateKey marks the second date-like column found in a header row.
	sellDateKey
)

// headerPatterns is matched against whole-cell header text in order; the
// first matching pattern claims the cell. Order is the precedence rule:
// buy > sell > date > symbol > days > stcg > speculation > quantity.
var headerPatterns = []struct {
	field field
	re    *regexp.Regexp
}{
	{fieldBuy, regexp.MustCompile(`(?i)^.*(buy|purchase|bought).*(amount|value|amt).*$`)},
	{fieldSell, regexp.MustCompile(`(?i)^.*(sell|sale|sold).*(amount|value|amt).*$`)},
	{fieldDate, regexp.MustCompile(`(?i)^.*(date|dt).*$`)},
	{fieldSymbol, regexp.MustCompile(`(?i)^.*(symbol|scrip|stock|security).*$`)},
	{fieldDays, regexp.MustCompile(`(?i)^.*(days|hold|holding|period).*$`)},
	{fieldSTCG, regexp.MustCompile(`(?i)^.*(stcg|profit|p&l|pnl|pl|short\s*term).*$`)},
	{fieldSpeculation, regexp.MustCompile(`(?i)^.*(speculation|intraday|specul|turnover).*$`)},
	{fieldQuantity, regexp.MustCompile(`(?i)^.*(quantity|qty|units).*$`)},
}

// brokerHints maps lowercase substrings found in sheet names or leading
// cells to a broker. Checked in order.
var brokerHints = []struct {
	substr string
	broker models.BrokerType
}{
	{"upstox", models.BrokerUpstox},
	{"zerodha", models.BrokerZerodha},
	{"tradewise exits", models.BrokerZerodha},
	{"icici", models.BrokerICICI},
	{"groww", models.BrokerGroww},
	{"angel", models.BrokerAngelOne},
	{"hdfc", models.BrokerHDFC},
}

// DetectFormat analyzes a workbook and returns the best available mapping.
// It never fails for a well-formed workbook; when nothing matches it falls
// back to the Upstox template and reports AutoDetected=false.
func DetectFormat(f *excelize.File) (*Result, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	broker := detectBrokerHint(f, sheets)

	// Header pass: first matching row across the leading sheets wins.
	for sheetIdx := 0; sheetIdx < len(sheets) && sheetIdx < maxHeaderScanSheets; sheetIdx++ {
		rows, err := f.GetRows(sheets[sheetIdx])
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", sheets[sheetIdx], err)
		}
		for rowIdx := 0; rowIdx < len(rows) && rowIdx < maxHeaderScanRows; rowIdx++ {
			cols := analyzeHeaderRow(rows[rowIdx])
			if _, hasBuy := cols[fieldBuy]; !hasBuy {
				continue
			}
			if _, hasSell := cols[fieldSell]; !hasSell {
				continue
			}

			mapping := buildMapping(broker, sheetIdx, rowIdx, len(rows), cols)
			logger.L.Info("Header row detected",
				"sheet", sheets[sheetIdx], "row", rowIdx, "mapping", mapping.String())
			return &Result{
				Broker:       broker,
				Mapping:      mapping,
				AutoDetected: true,
				Message:      fmt.Sprintf("Successfully detected %s format", broker.DisplayName()),
			}, nil
		}
	}

	// No header row matched; fall back to a broker template when the hint
	// pass identified one.
	if broker != models.BrokerUnknown {
		logger.L.Info("Using template for detected broker", "broker", broker.DisplayName())
		var mapping *models.FieldMap
		switch broker {
		case models.BrokerZerodha:
			mapping = models.ZerodhaTemplate()
		case models.BrokerUpstox:
			mapping = models.UpstoxTemplate()
		default:
			mapping = models.GenericTemplate()
		}
		return &Result{
			Broker:       broker,
			Mapping:      mapping,
			AutoDetected: true,
			Message:      fmt.Sprintf("Detected %s from file metadata, using template mapping", broker.DisplayName()),
		}, nil
	}

	logger.L.Warn("Could not auto-detect workbook format, using Upstox default")
	return &Result{
		Broker:       models.BrokerUpstox,
		Mapping:      models.UpstoxTemplate(),
		AutoDetected: false,
		Message:      "Auto-detection failed, using Upstox default format",
	}, nil
}

// detectBrokerHint scans sheet names and the first few rows of the first
// sheet for known broker names. It only ever narrows to a broker or stays
// at Unknown; it cannot fail.
func detectBrokerHint(f *excelize.File, sheets []string) models.BrokerType {
	for _, name := range sheets {
		if b, ok := matchHint(name); ok {
			return b
		}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		logger.L.Warn("Broker hint pass could not read first sheet", "error", err)
		return models.BrokerUnknown
	}
	for i := 0; i < len(rows) && i < maxHintScanRows; i++ {
		for _, cell := range rows[i] {
			if b, ok := matchHint(cell); ok {
				return b
			}
		}
	}
	return models.BrokerUnknown
}

func matchHint(text string) (models.BrokerType, bool) {
	lower := strings.ToLower(text)
	for _, h := range brokerHints {
		if strings.Contains(lower, h.substr) {
			return h.broker, true
		}
	}
	return models.BrokerUnknown, false
}

// analyzeHeaderRow maps detected fields to column indices. Each cell is
// claimed by the first pattern in precedence order that matches it; the
// first date-like cell becomes the trade date and the second the sell date.
func analyzeHeaderRow(row []string) map[field]int {
	cols := make(map[field]int)
	for colIdx, cell := range row {
		header := strings.TrimSpace(cell)
		if header == "" {
			continue
		}
		for _, p := range headerPatterns {
			if !p.re.MatchString(header) {
				continue
			}
			if p.field == fieldDate {
				if _, ok := cols[fieldDate]; !ok {
					cols[fieldDate] = colIdx
				} else if _, ok := cols[sellDateKey]; !ok {
					cols[sellDateKey] = colIdx
				}
			} else {
				cols[p.field] = colIdx
			}
			break
		}
	}
	return cols
}

func buildMapping(broker models.BrokerType, sheetIdx, headerRow, rowCount int, cols map[field]int) *models.FieldMap {
	m := models.NewFieldMap(broker)
	m.SheetIndex = sheetIdx
	m.HeaderRow = headerRow
	m.DataStartRow = headerRow + 1
	if rowCount > 0 {
		end := rowCount - 1
		m.DataEndRow = &end
	}

	if c, ok := cols[fieldBuy]; ok {
		m.BuyAmountCol = c
	}
	if c, ok := cols[fieldSell]; ok {
		m.SellAmountCol = c
	}
	if c, ok := cols[fieldDate]; ok {
		m.TradeDateCol = c
	}
	if c, ok := cols[sellDateKey]; ok {
		m.SellDateCol = c
	}
	if c, ok := cols[fieldSymbol]; ok {
		m.SymbolCol = c
	}
	if c, ok := cols[fieldDays]; ok {
		m.DaysHeldCol = c
	}
	if c, ok := cols[fieldSTCG]; ok {
		m.STCGCol = c
	}
	if c, ok := cols[fieldSpeculation]; ok {
		m.SpeculationCol = c
	}
	if c, ok := cols[fieldQuantity]; ok {
		m.QuantityCol = c
	}
	return m
}
