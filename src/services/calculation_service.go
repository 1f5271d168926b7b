package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/xuri/excelize/v2"

	"github.com/username/investinghurdle/backend/src/classifier"
	"github.com/username/investinghurdle/backend/src/detector"
	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/models"
	"github.com/username/investinghurdle/backend/src/quarters"
	"github.com/username/investinghurdle/backend/src/utils"
)

const reportCacheKeyFmt = "report_%s_%s_%s" // content hash, FY, scheme

type calculationServiceImpl struct {
	reportCache *cache.Cache
}

// NewCalculationService builds the default implementation. reportCache may
// be nil to disable result memoization.
func NewCalculationService(reportCache *cache.Cache) CalculationService {
	return &calculationServiceImpl{reportCache: reportCache}
}

func (s *calculationServiceImpl) CalculateFromUpload(fileReader io.Reader, financialYear, quarterScheme string) (*models.TaxCalculationResult, error) {
	startTime := time.Now()

	data, err := io.ReadAll(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookOpen, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: uploaded file is empty", ErrMissingInput)
	}

	scheme, err := quarters.ParseScheme(quarterScheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if financialYear == "" {
		financialYear = quarters.DefaultFinancialYear
	}
	calendar, err := quarters.ForFinancialYear(financialYear, scheme)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cacheKey := fmt.Sprintf(reportCacheKeyFmt, utils.HashBytes(data), financialYear, scheme)
	if s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			logger.L.Info("Report cache hit", "key", cacheKey)
			return cached.(*models.TaxCalculationResult), nil
		}
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookOpen, err)
	}
	defer workbook.Close()

	detection, err := detector.DetectFormat(workbook)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookOpen, err)
	}
	logger.L.Info("Workbook format detected",
		"broker", detection.Broker.DisplayName(),
		"autoDetected", detection.AutoDetected,
		"message", detection.Message)

	result, err := classifier.New(detection.Mapping, calendar).Classify(workbook)
	if err != nil {
		if errors.Is(err, classifier.ErrSheetNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrMissingInput, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrWorkbookOpen, err)
	}

	report := buildReport(result, detection, calendar, financialYear, scheme)
	report.ProcessingTimeMs = time.Since(startTime).Milliseconds()

	if s.reportCache != nil {
		s.reportCache.Set(cacheKey, report, cache.DefaultExpiration)
	}
	return report, nil
}

func buildReport(result *classifier.Result, detection *detector.Result, calendar *quarters.Calendar, financialYear string, scheme quarters.Scheme) *models.TaxCalculationResult {
	exemption := quarters.LTCGExemption(financialYear)

	report := &models.TaxCalculationResult{
		CalculationID: uuid.NewString(),
		FinancialYear: financialYear,
		QuarterScheme: string(scheme),

		Broker:           detection.Broker.DisplayName(),
		AutoDetected:     detection.AutoDetected,
		DetectionMessage: detection.Message,
		RowsProcessed:    result.RowsProcessed,
		RowsSkipped:      result.RowsSkipped,

		STCG: categorySummary(result.STCG),
		LTCG: models.LTCGSummary{
			CategorySummary: categorySummary(result.LTCG),
			Exemption:       exemption,
			TaxableLTCG:     utils.RoundFloat(quarters.TaxableLTCG(result.LTCG.Profit, financialYear), 2),
		},
		Speculation: models.SpeculationSummary{
			CategorySummary: categorySummary(result.Speculation),
			Turnover:        utils.RoundFloat(result.Speculation.Turnover, 2),
		},

		STCGQuarters:        quarterDetails(result.STCG, calendar, false),
		LTCGQuarters:        quarterDetails(result.LTCG, calendar, false),
		SpeculationQuarters: quarterDetails(result.Speculation, calendar, true),

		CalculatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	return report
}

func categorySummary(cat classifier.CategoryTotals) models.CategorySummary {
	return models.NewCategorySummary(
		utils.RoundFloat(cat.SellValue, 2),
		utils.RoundFloat(cat.BuyValue, 2),
		utils.RoundFloat(cat.Profit, 2),
	)
}

func quarterDetails(cat classifier.CategoryTotals, calendar *quarters.Calendar, withTurnover bool) []models.QuarterDetail {
	details := make([]models.QuarterDetail, 0, len(calendar.Quarters))
	for i, q := range calendar.Quarters {
		amount := utils.RoundFloat(cat.QuarterAmount[i], 2)
		detail := models.QuarterDetail{
			QuarterNumber: i + 1,
			Code:          q.Code,
			Label:         q.Label,
			StartDate:     q.StartDate.Format("2006-01-02"),
			EndDate:       q.EndDate.Format("2006-01-02"),
			Amount:        amount,
			SellValue:     utils.RoundFloat(cat.QuarterSell[i], 2),
			BuyValue:      utils.RoundFloat(cat.QuarterBuy[i], 2),
			Positive:      amount >= 0,
			DisplayColor:  models.DisplayColor(amount),
		}
		if withTurnover {
			detail.Turnover = utils.RoundFloat(cat.QuarterTurnover[i], 2)
		}
		details = append(details, detail)
	}
	return details
}
