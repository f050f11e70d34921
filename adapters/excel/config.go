package excel

// Config holds configuration for the Excel codec
type Config struct {
	Password  string // Password of encrypted workbooks, if any
	SheetName string // Output sheet name when the grid carries none (default: Sheet1)
}

// DefaultSheetName is the sheet excelize creates in a new workbook
const DefaultSheetName = "Sheet1"
