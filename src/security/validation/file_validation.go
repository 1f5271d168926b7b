package validation

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/username/investinghurdle/backend/src/logger"
)

// AllowedClientContentTypes is a map for quick lookup of allowed client-declared MIME types.
var AllowedClientContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true, // .xlsx
	"application/vnd.ms-excel": true, // older Excel clients still declare this
	"application/octet-stream": true, // fallback; the magic-byte check gates it
}

// xlsxMagic is the ZIP local-file-header signature; an .xlsx workbook is a
// ZIP container.
var xlsxMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// ValidateClientContentType checks the Content-Type header provided by the client.
func ValidateClientContentType(contentType string) error {
	normalized := strings.ToLower(strings.Split(contentType, ";")[0])
	if allowed, exists := AllowedClientContentTypes[normalized]; !exists || !allowed {
		logger.L.Warn("Disallowed client-declared Content-Type", "contentType", contentType)
		return fmt.Errorf("client-declared file type '%s' is not allowed for workbook upload", contentType)
	}
	return nil
}

// ValidateWorkbookMagicBytes checks the actual file content signature and
// rewinds the reader so the workbook parser can read the full file.
func ValidateWorkbookMagicBytes(file io.ReadSeeker) error {
	if file == nil {
		return fmt.Errorf("file is nil")
	}

	buffer := make([]byte, len(xlsxMagic))
	n, err := io.ReadFull(file, buffer)
	if err != nil && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read file for content checking: %w", err)
	}

	// Reset the read pointer to the beginning for the actual parser.
	if _, seekErr := file.Seek(0, io.SeekStart); seekErr != nil {
		return fmt.Errorf("failed to reset file read pointer: %w", seekErr)
	}

	if n < len(xlsxMagic) || !bytes.Equal(buffer, xlsxMagic) {
		logger.L.Warn("Uploaded file does not carry an xlsx signature")
		return fmt.Errorf("file content does not look like an .xlsx workbook")
	}
	return nil
}
