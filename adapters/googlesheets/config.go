package googlesheets

import (
	"time"

	"gitlab.com/tozd/go/errors"
)

var (
	// ErrMissingSpreadsheetID is returned when no spreadsheet is configured
	ErrMissingSpreadsheetID = errors.Base("spreadsheet id is required")

	// ErrSheetNotFound is returned when the spreadsheet has no sheet to read
	ErrSheetNotFound = errors.Base("sheet not found")
)

// Config represents configuration of one Google Sheets input
type Config struct {
	SpreadsheetID string
	SheetName     string        // Sheet to read (default: the first sheet)
	Name          string        // Original filename reported for the job (default: SpreadsheetID + ".xlsx")
	MaxRetries    int           // Maximum number of retries for API calls (default: 3)
	RetryInterval time.Duration // Base interval for exponential backoff (default: 100ms, capped at 2s)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SpreadsheetID == "" {
		return ErrMissingSpreadsheetID
	}
	return nil
}
