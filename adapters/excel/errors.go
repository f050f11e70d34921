package excel

import "gitlab.com/tozd/go/errors"

var (
	// ErrSheetNotFound is returned when the workbook has no sheet to read
	ErrSheetNotFound = errors.Base("sheet not found")

	// ErrInvalidFileFormat is returned when the file is not a valid Excel file
	ErrInvalidFileFormat = errors.Base("invalid Excel file format")
)
