package excel

import (
	"context"
	"io"
	"strconv"
	"strings"

	sheetreplace "github.com/ideamans/go-sheetreplace"
	"github.com/xuri/excelize/v2"
	"gitlab.com/tozd/go/errors"
)

// Codec implements sheetreplace.Codec for xlsx workbooks
type Codec struct {
	config Config
}

// New creates a new Excel codec. A nil config uses defaults.
func New(config *Config) *Codec {
	c := &Codec{}
	if config != nil {
		c.config = *config
	}
	if c.config.SheetName == "" {
		c.config.SheetName = DefaultSheetName
	}
	return c
}

// Decode reads the first sheet of the workbook in r
func (c *Codec) Decode(ctx context.Context, r io.Reader) (*sheetreplace.Grid, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f, err := excelize.OpenReader(r, excelize.Options{Password: c.config.Password})
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalidFileFormat, err.Error())
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrSheetNotFound
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Errorf("failed to get rows: %w", err)
	}

	dates := dateStyles{file: f, known: map[int]bool{}}
	grid := &sheetreplace.Grid{
		SheetName: sheet,
		Rows:      make([][]sheetreplace.Value, len(rows)),
	}
	for i, row := range rows {
		values := make([]sheetreplace.Value, len(row))
		for j, raw := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, errors.Errorf("failed to name cell: %w", err)
			}
			v, err := readCell(f, sheet, cell, raw, &dates)
			if err != nil {
				return nil, errors.Errorf("failed to read cell %s: %w", cell, err)
			}
			values[j] = v
		}
		grid.Rows[i] = values
	}

	return grid, nil
}

// readCell converts the raw text of one cell into a typed value
func readCell(f *excelize.File, sheet, cell, raw string, dates *dateStyles) (sheetreplace.Value, error) {
	if raw == "" {
		return sheetreplace.EmptyValue{}, nil
	}

	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, err
	}

	switch typ {
	case excelize.CellTypeBool:
		return sheetreplace.BoolValue(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeDate:
		return timestamp(f, sheet, cell)
	case excelize.CellTypeError:
		return sheetreplace.EmptyValue{}, nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sheetreplace.TextValue(raw), nil
		}
		isDate, err := dates.isDate(sheet, cell)
		if err != nil {
			return nil, err
		}
		if isDate {
			return timestamp(f, sheet, cell)
		}
		return sheetreplace.NumberValue(n), nil
	default:
		return sheetreplace.TextValue(raw), nil
	}
}

func timestamp(f *excelize.File, sheet, cell string) (sheetreplace.Value, error) {
	formatted, err := f.GetCellValue(sheet, cell)
	if err != nil {
		return nil, err
	}
	return sheetreplace.TimestampValue(formatted), nil
}

// Encode writes grid as a single-sheet workbook
func (c *Codec) Encode(ctx context.Context, grid *sheetreplace.Grid) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := grid.SheetName
	if sheet == "" {
		sheet = c.config.SheetName
	}
	if sheet != DefaultSheetName {
		if err := f.SetSheetName(DefaultSheetName, sheet); err != nil {
			return nil, errors.Errorf("failed to name sheet: %w", err)
		}
	}

	for i, row := range grid.Rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, errors.Errorf("failed to name cell: %w", err)
			}
			if err := writeCell(f, sheet, cell, v); err != nil {
				return nil, errors.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Errorf("failed to save Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeCell(f *excelize.File, sheet, cell string, v sheetreplace.Value) error {
	switch val := v.(type) {
	case sheetreplace.TextValue:
		return f.SetCellStr(sheet, cell, string(val))
	case sheetreplace.TimestampValue:
		return f.SetCellStr(sheet, cell, string(val))
	case sheetreplace.NumberValue:
		return f.SetCellFloat(sheet, cell, float64(val), -1, 64)
	case sheetreplace.BoolValue:
		return f.SetCellBool(sheet, cell, bool(val))
	case sheetreplace.RichTextValue:
		runs := richTextRuns(val.Runs)
		if len(runs) == 0 {
			return f.SetCellStr(sheet, cell, "")
		}
		return f.SetCellRichText(sheet, cell, runs)
	case sheetreplace.EmptyValue, nil:
		return f.SetCellStr(sheet, cell, "")
	default:
		return errors.Errorf("unsupported cell value %T", v)
	}
}

// richTextRuns maps runs to excelize runs, dropping empty ones
func richTextRuns(runs []sheetreplace.Run) []excelize.RichTextRun {
	out := make([]excelize.RichTextRun, 0, len(runs))
	for _, r := range runs {
		if r.Text == "" {
			continue
		}
		run := excelize.RichTextRun{Text: r.Text}
		if !r.Style.IsDefault() {
			run.Font = &excelize.Font{
				Bold:   r.Style.Bold,
				Italic: r.Style.Italic,
				Color:  r.Style.Color,
			}
		}
		out = append(out, run)
	}
	return out
}
