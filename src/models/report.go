package models

// DisplayColor returns the UI hint for a signed amount.
func DisplayColor(amount float64) string {
	if amount >= 0 {
		return "green"
	}
	return "red"
}

// CategorySummary holds the full-year totals for one tax category.
type CategorySummary struct {
	FullValue    float64 `json:"full_value"` // total sell value
	TotalCost    float64 `json:"total_cost"` // total buy value
	Total        float64 `json:"total"`      // net profit or loss
	Positive     bool    `json:"positive"`
	DisplayColor string  `json:"display_color"`
}

// NewCategorySummary derives the sign flag and color hint from the net total.
func NewCategorySummary(sellValue, cost, total float64) CategorySummary {
	return CategorySummary{
		FullValue:    sellValue,
		TotalCost:    cost,
		Total:        total,
		Positive:     total >= 0,
		DisplayColor: DisplayColor(total),
	}
}

// LTCGSummary adds the exemption-derived figures to the base totals.
// The exemption only affects the taxable figure, never the reported total.
type LTCGSummary struct {
	CategorySummary
	Exemption   float64 `json:"exemption"`
	TaxableLTCG float64 `json:"taxable_ltcg"`
}

// SpeculationSummary adds intraday turnover to the base totals.
type SpeculationSummary struct {
	CategorySummary
	Turnover float64 `json:"turnover"`
}

// QuarterDetail is one quarter's slice of a category breakdown.
type QuarterDetail struct {
	QuarterNumber int     `json:"quarter_number"`
	Code          string  `json:"code"`
	Label         string  `json:"label"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	Amount        float64 `json:"amount"`
	SellValue     float64 `json:"sell_value"`
	BuyValue      float64 `json:"buy_value"`
	Turnover      float64 `json:"turnover,omitempty"`
	Positive      bool    `json:"positive"`
	DisplayColor  string  `json:"display_color"`
}

// TaxCalculationResult is the aggregated output of one calculation run.
// It is produced fresh per call; nothing in it is shared across requests.
type TaxCalculationResult struct {
	CalculationID string `json:"calculation_id"`
	FinancialYear string `json:"financial_year"`
	QuarterScheme string `json:"quarter_scheme"`

	Broker           string `json:"broker"`
	AutoDetected     bool   `json:"auto_detected"`
	DetectionMessage string `json:"detection_message"`
	RowsProcessed    int    `json:"rows_processed"`
	RowsSkipped      int    `json:"rows_skipped"`

	STCG        CategorySummary    `json:"stcg"`
	LTCG        LTCGSummary        `json:"ltcg"`
	Speculation SpeculationSummary `json:"speculation"`

	STCGQuarters        []QuarterDetail `json:"stcg_quarters"`
	LTCGQuarters        []QuarterDetail `json:"ltcg_quarters"`
	SpeculationQuarters []QuarterDetail `json:"speculation_quarters"`

	CalculatedAt     string `json:"calculated_at"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}
