package quarters

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestForFinancialYearPortalScheme(t *testing.T) {
	cal, err := ForFinancialYear("FY 2021-22", SchemePortal5)
	require.NoError(t, err)
	require.Len(t, cal.Quarters, 5)

	assert.Equal(t, "Q1", cal.Quarters[0].Code)
	assert.Equal(t, day(2021, 4, 1), cal.Quarters[0].StartDate)
	assert.Equal(t, day(2021, 6, 15), cal.Quarters[0].EndDate)

	assert.Equal(t, "Q2", cal.Quarters[1].Code)
	assert.Equal(t, day(2021, 6, 16), cal.Quarters[1].StartDate)
	assert.Equal(t, day(2021, 9, 15), cal.Quarters[1].EndDate)

	assert.Equal(t, "Q4", cal.Quarters[3].Code)
	assert.Equal(t, day(2021, 12, 16), cal.Quarters[3].StartDate)
	assert.Equal(t, day(2022, 3, 15), cal.Quarters[3].EndDate)

	// The short rump period after the March cut.
	assert.Equal(t, "Q5", cal.Quarters[4].Code)
	assert.Equal(t, day(2022, 3, 16), cal.Quarters[4].StartDate)
	assert.Equal(t, day(2022, 3, 31), cal.Quarters[4].EndDate)
}

func TestForFinancialYearStandardScheme(t *testing.T) {
	cal, err := ForFinancialYear("FY 2024-25", SchemeStandard4)
	require.NoError(t, err)
	require.Len(t, cal.Quarters, 4)

	assert.Equal(t, day(2024, 4, 1), cal.Quarters[0].StartDate)
	assert.Equal(t, day(2024, 6, 30), cal.Quarters[0].EndDate)
	assert.Equal(t, day(2025, 1, 1), cal.Quarters[3].StartDate)
	assert.Equal(t, day(2025, 3, 31), cal.Quarters[3].EndDate)
}

func TestQuarterBoundariesInclusive(t *testing.T) {
	cal, err := ForFinancialYear("FY 2021-22", SchemePortal5)
	require.NoError(t, err)

	tests := []struct {
		date     time.Time
		expected int
	}{
		{day(2021, 4, 1), 1},
		{day(2021, 6, 15), 1},
		{day(2021, 6, 16), 2},
		{day(2021, 9, 15), 2},
		{day(2021, 9, 16), 3},
		{day(2021, 12, 15), 3},
		{day(2021, 12, 16), 4},
		{day(2022, 3, 15), 4},
		{day(2022, 3, 16), 5},
		{day(2022, 3, 31), 5},
		{day(2021, 3, 31), 0}, // before the financial year
		{day(2022, 4, 1), 0},  // after the financial year
	}
	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			assert.Equal(t, tt.expected, cal.QuarterIndex(tt.date))
			q, ok := cal.QuarterFor(tt.date)
			if tt.expected == 0 {
				assert.False(t, ok)
			} else {
				require.True(t, ok)
				assert.Equal(t, fmt.Sprintf("Q%d", tt.expected), q.Code)
			}
		})
	}
}

func TestCalendarContiguousAndCovering(t *testing.T) {
	years := []string{"FY 2019-20", "FY 2020-21", "FY 2021-22", "FY 2023-24", "FY 2024-25", "FY 2025-26"}
	schemes := []Scheme{SchemePortal5, SchemeStandard4}

	for _, fy := range years {
		for _, scheme := range schemes {
			t.Run(fmt.Sprintf("%s_%s", fy, scheme), func(t *testing.T) {
				cal, err := ForFinancialYear(fy, scheme)
				require.NoError(t, err)

				// Each quarter starts the day after the previous one ends.
				for i := 1; i < len(cal.Quarters); i++ {
					prevEnd := cal.Quarters[i-1].EndDate
					assert.Equal(t, prevEnd.AddDate(0, 0, 1), cal.Quarters[i].StartDate,
						"gap or overlap between %s and %s", cal.Quarters[i-1].Code, cal.Quarters[i].Code)
				}

				// Every day of the span resolves to exactly one quarter.
				start := cal.Quarters[0].StartDate
				end := cal.Quarters[len(cal.Quarters)-1].EndDate
				for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
					count := 0
					for _, q := range cal.Quarters {
						if q.Contains(d) {
							count++
						}
					}
					require.Equal(t, 1, count, "date %s covered by %d quarters", d.Format("2006-01-02"), count)
				}
			})
		}
	}
}

func TestParseFinancialYear(t *testing.T) {
	tests := []struct {
		label     string
		wantStart int
		wantEnd   int
		wantErr   bool
	}{
		{"FY 2024-25", 2024, 2025, false},
		{"FY 2021-2022", 2021, 2022, false},
		{" FY 2023-24 ", 2023, 2024, false},
		{"2024-25", 2024, 2025, false},
		{"FY 2024-26", 0, 0, true}, // not consecutive
		{"FY 2024", 0, 0, true},
		{"garbage", 0, 0, true},
		{"", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			start, end, err := ParseFinancialYear(tt.label)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidFinancialYear)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestForFinancialYearOrDefault(t *testing.T) {
	cal := ForFinancialYearOrDefault("not a year", SchemePortal5)
	require.NotNil(t, cal)
	assert.Equal(t, DefaultFinancialYear, cal.FinancialYear)

	cal = ForFinancialYearOrDefault("FY 2022-23", SchemePortal5)
	assert.Equal(t, "FY 2022-23", cal.FinancialYear)
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemePortal5, s)

	s, err = ParseScheme("standard_q4")
	require.NoError(t, err)
	assert.Equal(t, SchemeStandard4, s)

	_, err = ParseScheme("Q3_WEIRD")
	require.ErrorIs(t, err, ErrUnknownScheme)
}

func TestLTCGExemption(t *testing.T) {
	assert.Equal(t, 125000.0, LTCGExemption("FY 2024-25"))
	assert.Equal(t, 125000.0, LTCGExemption("FY 2025-26"))
	assert.Equal(t, 100000.0, LTCGExemption("FY 2023-24"))
	assert.Equal(t, 100000.0, LTCGExemption("unparsable"))

	assert.Equal(t, 75000.0, TaxableLTCG(200000, "FY 2024-25"))
	assert.Equal(t, 0.0, TaxableLTCG(50000, "FY 2024-25"))
	assert.Equal(t, 0.0, TaxableLTCG(-10000, "FY 2023-24"))
}
