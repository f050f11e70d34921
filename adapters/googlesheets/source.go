package googlesheets

import (
	"context"
	"strings"
	"time"

	sheetreplace "github.com/ideamans/go-sheetreplace"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Source reads the first sheet of a Google spreadsheet as a grid.
// It implements sheetreplace.GridSource.
type Source struct {
	service *sheets.Service
	config  Config
}

// NewSource creates a new Google Sheets source with provided options
func NewSource(ctx context.Context, config Config, opts ...option.ClientOption) (*Source, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.RetryInterval <= 0 {
		config.RetryInterval = 100 * time.Millisecond
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Errorf("failed to create sheets service: %w", err)
	}

	return &Source{
		service: service,
		config:  config,
	}, nil
}

// Name returns the filename the batch reports for this spreadsheet
func (s *Source) Name() string {
	if s.config.Name != "" {
		return s.config.Name
	}
	return s.config.SpreadsheetID + ".xlsx"
}

// LoadGrid fetches the sheet's cells with retry. Numbers and booleans keep
// their type; date and time cells become timestamps of their display text.
func (s *Source) LoadGrid(ctx context.Context) (*sheetreplace.Grid, error) {
	var grid *sheetreplace.Grid
	var err error

	for i := 0; i <= s.config.MaxRetries; i++ {
		grid, err = s.load(ctx)
		if err == nil || errors.Is(err, ErrSheetNotFound) {
			break
		}

		if i < s.config.MaxRetries {
			// Exponential backoff with reasonable limits
			backoff := time.Duration(1<<uint(i)) * s.config.RetryInterval
			if backoff > 2*time.Second {
				backoff = 2 * time.Second
			}
			zerolog.Ctx(ctx).Debug().Err(err).Dur("backoff", backoff).Str("spreadsheet", s.config.SpreadsheetID).Msg("retrying sheets API")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	if err != nil {
		return nil, errors.Errorf("failed after %d retries: %w", s.config.MaxRetries, err)
	}
	return grid, nil
}

// gridFields selects the effective value, display text and number format
// type of every cell of the requested sheet
const gridFields = "sheets(properties.title,data.rowData.values(effectiveValue,formattedValue,effectiveFormat.numberFormat.type))"

func (s *Source) load(ctx context.Context) (*sheetreplace.Grid, error) {
	sheetName := s.config.SheetName
	if sheetName == "" {
		ss, err := s.service.Spreadsheets.Get(s.config.SpreadsheetID).Fields("sheets.properties").Context(ctx).Do()
		if err != nil {
			return nil, errors.Errorf("failed to get spreadsheet: %w", err)
		}
		if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
			return nil, ErrSheetNotFound
		}
		sheetName = ss.Sheets[0].Properties.Title
	}

	resp, err := s.service.Spreadsheets.Get(s.config.SpreadsheetID).
		Ranges(quoteSheetName(sheetName)).
		IncludeGridData(true).
		Fields(gridFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Errorf("failed to get sheet data: %w", err)
	}
	if len(resp.Sheets) == 0 {
		return nil, ErrSheetNotFound
	}

	var rows []*sheets.RowData
	for _, data := range resp.Sheets[0].Data {
		if data != nil {
			rows = append(rows, data.RowData...)
		}
	}

	grid := &sheetreplace.Grid{
		SheetName: sheetName,
		Rows:      make([][]sheetreplace.Value, len(rows)),
	}
	for i, row := range rows {
		var cells []*sheets.CellData
		if row != nil {
			cells = row.Values
		}
		values := make([]sheetreplace.Value, len(cells))
		for j, cell := range cells {
			values[j] = convertCell(cell)
		}
		grid.Rows[i] = values
	}
	return grid, nil
}

// quoteSheetName renders a sheet name as an A1 range covering the whole sheet
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// convertCell converts a Google Sheets cell to a grid value. Numbers
// formatted as a date or time keep their display text as a timestamp.
func convertCell(cell *sheets.CellData) sheetreplace.Value {
	if cell == nil || cell.EffectiveValue == nil {
		return sheetreplace.EmptyValue{}
	}

	v := cell.EffectiveValue
	switch {
	case v.NumberValue != nil:
		if isDateFormat(cell.EffectiveFormat) {
			return sheetreplace.TimestampValue(cell.FormattedValue)
		}
		return sheetreplace.NumberValue(*v.NumberValue)
	case v.BoolValue != nil:
		return sheetreplace.BoolValue(*v.BoolValue)
	case v.StringValue != nil:
		if *v.StringValue == "" {
			return sheetreplace.EmptyValue{}
		}
		return sheetreplace.TextValue(*v.StringValue)
	default:
		// error values
		return sheetreplace.EmptyValue{}
	}
}

func isDateFormat(f *sheets.CellFormat) bool {
	if f == nil || f.NumberFormat == nil {
		return false
	}
	switch f.NumberFormat.Type {
	case "DATE", "TIME", "DATE_TIME":
		return true
	}
	return false
}
