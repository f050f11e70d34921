package sheetreplace

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrIngestion is returned when an upload cannot be turned into jobs
	ErrIngestion = errors.Base("ingestion failed")

	// ErrNoSpreadsheets is returned when an upload holds no spreadsheet at all
	ErrNoSpreadsheets = errors.BaseWrap(ErrIngestion, "no spreadsheet files found")

	// ErrExtractLimit is returned when archive entries expand beyond the
	// configured byte budget
	ErrExtractLimit = errors.BaseWrap(ErrIngestion, "extracted size limit exceeded")

	// ErrDecode is returned when a spreadsheet or its first sheet cannot be read
	ErrDecode = errors.Base("decode failed")

	// ErrEncode is returned when the output spreadsheet cannot be written
	ErrEncode = errors.Base("encode failed")

	// ErrArchive is returned when a bundle cannot be read or written
	ErrArchive = errors.Base("archive failed")

	// ErrAggregation is reserved for a broken aggregation step
	ErrAggregation = errors.Base("aggregation failed")

	// ErrAllFailed is returned when no file of a non-empty batch succeeded
	ErrAllFailed = errors.Base("every file in the batch failed")
)

// FileError ties a failure to its category sentinel and, when known, the file.
type FileError struct {
	Kind     error
	Filename string
	Err      error
}

func (e *FileError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Filename, e.Kind, e.Err)
}

// Unwrap exposes both the category and the cause to errors.Is / errors.As.
func (e *FileError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func fileError(kind error, filename string, err error) error {
	return &FileError{Kind: kind, Filename: filename, Err: err}
}
