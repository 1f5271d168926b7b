package quarters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/username/investinghurdle/backend/src/logger"
)

// Scheme selects how a financial year is split into reporting periods.
type Scheme string

const (
	// SchemePortal5 is the 5-period split used by the income-tax portal:
	// fixed mid-month cuts on Jun 15/16, Sep 15/16, Dec 15/16, Mar 15/16,
	// with a short Mar 16-31 rump period as Q5.
	SchemePortal5 Scheme = "Q5_IT_PORTAL"
	// SchemeStandard4 is the plain Apr-Jun / Jul-Sep / Oct-Dec / Jan-Mar split.
	SchemeStandard4 Scheme = "STANDARD_Q4"
)

var (
	ErrInvalidFinancialYear = errors.New("invalid financial year label")
	ErrUnknownScheme        = errors.New("unknown quarter scheme")
)

// ParseScheme maps a scheme string to a Scheme, defaulting to the portal
// split when the input is empty.
func ParseScheme(s string) (Scheme, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(SchemePortal5):
		return SchemePortal5, nil
	case string(SchemeStandard4):
		return SchemeStandard4, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownScheme, s)
	}
}

// Quarter is one inclusive date range within a financial year.
type Quarter struct {
	Code      string    `json:"code"`
	Label     string    `json:"label"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Contains reports whether date falls inside the quarter, boundaries included.
func (q Quarter) Contains(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(q.StartDate) && !day.After(q.EndDate)
}

func (q Quarter) String() string {
	return fmt.Sprintf("%s (%s) [%s to %s]",
		q.Code, q.Label, q.StartDate.Format("2006-01-02"), q.EndDate.Format("2006-01-02"))
}

// Calendar holds the ordered quarter list for one financial year.
// It is built once per calculation and never mutated afterwards.
type Calendar struct {
	FinancialYear string    `json:"financial_year"`
	Scheme        Scheme    `json:"scheme"`
	Quarters      []Quarter `json:"quarters"`
}

// quarterBound is one row of the fixed boundary table. The portal split uses
// ad-hoc mid-month dates, so the boundaries are listed explicitly rather
// than computed, to keep the off-by-one-day risk out of the code path.
type quarterBound struct {
	code, label                  string
	startMonth, startDay         int
	endMonth, endDay             int
	startInEndYear, endInEndYear bool
}

var portal5Bounds = []quarterBound{
	{"Q1", "Apr-Jun", 4, 1, 6, 15, false, false},
	{"Q2", "Jun-Sep", 6, 16, 9, 15, false, false},
	{"Q3", "Sep-Dec", 9, 16, 12, 15, false, false},
	{"Q4", "Dec-Mar", 12, 16, 3, 15, false, true},
	{"Q5", "Mar-Mar", 3, 16, 3, 31, true, true},
}

var standard4Bounds = []quarterBound{
	{"Q1", "Apr-Jun", 4, 1, 6, 30, false, false},
	{"Q2", "Jul-Sep", 7, 1, 9, 30, false, false},
	{"Q3", "Oct-Dec", 10, 1, 12, 31, false, false},
	{"Q4", "Jan-Mar", 1, 1, 3, 31, true, true},
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ParseFinancialYear splits an "FY YYYY-YY" label into its start and end
// years. The end year must be the start year plus one.
func ParseFinancialYear(label string) (startYear, endYear int, err error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(label), "FY"))
	parts := strings.Split(trimmed, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFinancialYear, label)
	}
	startYear, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFinancialYear, label)
	}
	endPart := strings.TrimSpace(parts[1])
	endYear, err = strconv.Atoi(endPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFinancialYear, label)
	}
	// Accept the short "FY 2024-25" form
	if endYear < 100 {
		endYear += (startYear / 100) * 100
		if endYear < startYear {
			endYear += 100
		}
	}
	if endYear != startYear+1 {
		return 0, 0, fmt.Errorf("%w: %q (years must be consecutive)", ErrInvalidFinancialYear, label)
	}
	return startYear, endYear, nil
}

// ForFinancialYear builds the quarter calendar for a financial year label
// such as "FY 2024-25" under the given scheme.
func ForFinancialYear(label string, scheme Scheme) (*Calendar, error) {
	startYear, endYear, err := ParseFinancialYear(label)
	if err != nil {
		return nil, err
	}

	var bounds []quarterBound
	switch scheme {
	case SchemePortal5:
		bounds = portal5Bounds
	case SchemeStandard4:
		bounds = standard4Bounds
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}

	cal := &Calendar{
		FinancialYear: strings.TrimSpace(label),
		Scheme:        scheme,
		Quarters:      make([]Quarter, 0, len(bounds)),
	}
	for _, b := range bounds {
		sy, ey := startYear, startYear
		if b.startInEndYear {
			sy = endYear
		}
		if b.endInEndYear {
			ey = endYear
		}
		cal.Quarters = append(cal.Quarters, Quarter{
			Code:      b.code,
			Label:     b.label,
			StartDate: date(sy, b.startMonth, b.startDay),
			EndDate:   date(ey, b.endMonth, b.endDay),
		})
	}
	return cal, nil
}

// DefaultFinancialYear is the fallback used by legacy call sites only.
const DefaultFinancialYear = "FY 2024-25"

// ForFinancialYearOrDefault builds the calendar for label, falling back to
// DefaultFinancialYear when the label does not parse. This exists for
// backward compatibility with callers that predate label validation; new
// code should call ForFinancialYear and handle the error.
func ForFinancialYearOrDefault(label string, scheme Scheme) *Calendar {
	cal, err := ForFinancialYear(label, scheme)
	if err != nil {
		if logger.L != nil {
			logger.L.Warn("Falling back to default financial year", "label", label, "error", err)
		}
		cal, _ = ForFinancialYear(DefaultFinancialYear, scheme)
	}
	return cal
}

// QuarterFor returns the first quarter whose inclusive range contains date.
func (c *Calendar) QuarterFor(date time.Time) (Quarter, bool) {
	for _, q := range c.Quarters {
		if q.Contains(date) {
			return q, true
		}
	}
	return Quarter{}, false
}

// QuarterIndex returns the 1-based position of the quarter containing date,
// or 0 when the date falls outside the financial year.
func (c *Calendar) QuarterIndex(date time.Time) int {
	for i, q := range c.Quarters {
		if q.Contains(date) {
			return i + 1
		}
	}
	return 0
}

// LTCG exemption thresholds. Raised to 1.25 lakh from FY 2024-25 onwards.
const (
	ltcgExemptionFrom2024 = 125000.0
	ltcgExemptionEarlier  = 100000.0
)

// LTCGExemption returns the exemption threshold for a financial year label.
// Unparsable labels get the pre-2024 value.
func LTCGExemption(label string) float64 {
	startYear, _, err := ParseFinancialYear(label)
	if err != nil {
		return ltcgExemptionEarlier
	}
	if startYear >= 2024 {
		return ltcgExemptionFrom2024
	}
	return ltcgExemptionEarlier
}

// TaxableLTCG applies the exemption to a total LTCG figure, floored at zero.
func TaxableLTCG(totalLTCG float64, label string) float64 {
	taxable := totalLTCG - LTCGExemption(label)
	if taxable < 0 {
		return 0
	}
	return taxable
}
