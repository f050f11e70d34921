package excel

import (
	"bytes"
	"context"
	"testing"

	sheetreplace "github.com/ideamans/go-sheetreplace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// newWorkbook builds a two-sheet workbook covering every cell kind
func newWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Data"))
	require.NoError(t, f.SetCellStr("Data", "A1", "  Header  "))
	require.NoError(t, f.SetCellStr("Data", "B1", "hello world"))
	require.NoError(t, f.SetCellFloat("Data", "A2", 42.5, -1, 64))
	require.NoError(t, f.SetCellBool("Data", "B2", true))

	dateFmt := "yyyy-mm-dd"
	style, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	require.NoError(t, err)
	require.NoError(t, f.SetCellFloat("Data", "C2", 45000, -1, 64))
	require.NoError(t, f.SetCellStyle("Data", "C2", "C2", style))
	require.NoError(t, f.SetCellStr("Data", "B3", "after gap"))

	_, err = f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellStr("Second", "A1", "ignored"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestCodec_Decode(t *testing.T) {
	codec := New(nil)

	grid, err := codec.Decode(context.Background(), bytes.NewReader(newWorkbook(t)))
	require.NoError(t, err)

	assert.Equal(t, "Data", grid.SheetName)
	require.Len(t, grid.Rows, 3)

	assert.Equal(t, sheetreplace.TextValue("  Header  "), grid.Cell(0, 0))
	assert.Equal(t, sheetreplace.TextValue("hello world"), grid.Cell(0, 1))
	assert.Equal(t, sheetreplace.NumberValue(42.5), grid.Cell(1, 0))
	assert.Equal(t, sheetreplace.BoolValue(true), grid.Cell(1, 1))
	assert.Equal(t, sheetreplace.TimestampValue("2023-03-15"), grid.Cell(1, 2))
	assert.Equal(t, sheetreplace.EmptyValue{}, grid.Cell(2, 0))
	assert.Equal(t, sheetreplace.TextValue("after gap"), grid.Cell(2, 1))
}

func TestCodec_DecodeErrors(t *testing.T) {
	codec := New(nil)

	t.Run("corrupt bytes", func(t *testing.T) {
		_, err := codec.Decode(context.Background(), bytes.NewReader([]byte("not a workbook")))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidFileFormat)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := codec.Decode(ctx, bytes.NewReader(newWorkbook(t)))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCodec_Encode(t *testing.T) {
	codec := New(nil)
	highlight := sheetreplace.Style{Bold: true, Color: "FF0000"}

	grid := &sheetreplace.Grid{
		SheetName: "Data",
		Rows: [][]sheetreplace.Value{
			{
				sheetreplace.TextValue("Header"),
				sheetreplace.RichTextValue{Runs: []sheetreplace.Run{
					{Text: "hello "},
					{Text: "earth", Style: highlight},
				}},
			},
			{
				sheetreplace.NumberValue(7),
				sheetreplace.BoolValue(false),
				sheetreplace.RichTextValue{Runs: []sheetreplace.Run{{Text: "", Style: highlight}}},
			},
		},
	}

	data, err := codec.Encode(context.Background(), grid)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Data"}, f.GetSheetList())

	v, err := f.GetCellValue("Data", "B1")
	require.NoError(t, err)
	assert.Equal(t, "hello earth", v)

	runs, err := f.GetCellRichText("Data", "B1")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "hello ", runs[0].Text)
	assert.Equal(t, "earth", runs[1].Text)
	require.NotNil(t, runs[1].Font)
	assert.True(t, runs[1].Font.Bold)
	assert.Contains(t, runs[1].Font.Color, "FF0000")

	v, err = f.GetCellValue("Data", "A2")
	require.NoError(t, err)
	assert.Equal(t, "7", v)

	typ, err := f.GetCellType("Data", "B2")
	require.NoError(t, err)
	assert.Equal(t, excelize.CellTypeBool, typ)

	v, err = f.GetCellValue("Data", "C2")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestCodec_EncodeSheetName(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		grid   string
		want   string
	}{
		{name: "grid name wins", config: &Config{SheetName: "Out"}, grid: "Data", want: "Data"},
		{name: "config fallback", config: &Config{SheetName: "Out"}, grid: "", want: "Out"},
		{name: "default", config: nil, grid: "", want: DefaultSheetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := New(tt.config).Encode(context.Background(), &sheetreplace.Grid{SheetName: tt.grid})
			require.NoError(t, err)

			f, err := excelize.OpenReader(bytes.NewReader(data))
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, []string{tt.want}, f.GetSheetList())
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := New(nil)
	ctx := context.Background()

	grid, err := codec.Decode(ctx, bytes.NewReader(newWorkbook(t)))
	require.NoError(t, err)

	tr := sheetreplace.NewTransformer(codec, sheetreplace.ReplacementSpec{Find: "world", Replace: "earth"}, nil)
	res, err := tr.TransformFile(ctx, grid, "book.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 1, res.ReplacedCount)

	out, err := codec.Decode(ctx, bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, sheetreplace.TextValue("Header"), out.Cell(0, 0))
	assert.Equal(t, sheetreplace.TextValue("hello earth"), out.Cell(0, 1))
	assert.Equal(t, sheetreplace.NumberValue(42.5), out.Cell(1, 0))
	assert.Equal(t, sheetreplace.BoolValue(true), out.Cell(1, 1))
	assert.Equal(t, sheetreplace.TextValue("2023-03-15"), out.Cell(1, 2))
}

func TestIsDateFormatCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"yyyy-mm-dd", true},
		{"dd/mm/yyyy hh:mm", true},
		{"[h]:mm:ss", true},
		{"mmm", true},
		{"0.00", false},
		{"#,##0;[Red]-#,##0", false},
		{`0.0 "days"`, false},
		{"[$USD-409] #,##0.00", false},
		{`#,##0\d`, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, isDateFormatCode(tt.code))
		})
	}
}
