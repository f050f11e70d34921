package excel

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// builtinDateFormats are the predefined number formats that render dates or times
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// dateStyles answers whether a numeric cell is formatted as a date, caching per style id
type dateStyles struct {
	file  *excelize.File
	known map[int]bool
}

func (d *dateStyles) isDate(sheet, cell string) (bool, error) {
	id, err := d.file.GetCellStyle(sheet, cell)
	if err != nil {
		return false, err
	}
	if isDate, ok := d.known[id]; ok {
		return isDate, nil
	}

	style, err := d.file.GetStyle(id)
	if err != nil {
		return false, err
	}
	isDate := builtinDateFormats[style.NumFmt]
	if !isDate && style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	d.known[id] = isDate
	return isDate, nil
}

// isDateFormatCode reports whether a custom number format renders a date or
// time. Quoted literals, escaped characters and bracketed sections such as
// colors or locales are ignored, except elapsed-time sections like [h].
func isDateFormatCode(code string) bool {
	var b strings.Builder
	for i := 0; i < len(code); i++ {
		switch ch := code[i]; ch {
		case '"':
			end := strings.IndexByte(code[i+1:], '"')
			if end < 0 {
				i = len(code)
			} else {
				i += end + 1
			}
		case '[':
			end := strings.IndexByte(code[i+1:], ']')
			if end < 0 {
				i = len(code)
				break
			}
			section := strings.ToLower(code[i+1 : i+1+end])
			if section != "" && strings.Trim(section, "hms") == "" {
				b.WriteString(section)
			}
			i += end + 1
		case '\\', '_', '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}

	rest := strings.ToLower(b.String())
	if strings.ContainsAny(rest, "ydhs") {
		return true
	}
	return strings.Contains(rest, "m") && !strings.ContainsAny(rest, "0#?")
}
