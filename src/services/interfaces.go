package services

import (
	"errors"
	"io"

	"github.com/username/investinghurdle/backend/src/models"
)

// Error kinds surfaced to the HTTP layer. Handlers map these onto status
// codes; everything else is treated as internal.
var (
	// ErrMissingInput covers an absent upload or a mapping that points at a
	// sheet the workbook does not contain.
	ErrMissingInput = errors.New("workbook or required sheet missing")
	// ErrWorkbookOpen covers a workbook that cannot be opened or read.
	ErrWorkbookOpen = errors.New("workbook could not be opened")
	// ErrInvalidConfig covers an unparsable financial-year label or an
	// unknown quarter scheme.
	ErrInvalidConfig = errors.New("invalid calculation configuration")
)

// CalculationService turns an uploaded workbook into a tax calculation
// result. Implementations construct fresh detector/classifier state per
// call; concurrent requests never share mutable state.
type CalculationService interface {
	CalculateFromUpload(fileReader io.Reader, financialYear, quarterScheme string) (*models.TaxCalculationResult, error)
}
