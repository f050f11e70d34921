package sheetreplace

import "strings"

// Value is one typed cell value. The set of implementations is closed:
// only this package can add a kind.
type Value interface {
	isValue()
}

// TextValue is a string cell
type TextValue string

// NumberValue is a numeric cell
type NumberValue float64

// TimestampValue is a date or time cell, held as its display rendering
type TimestampValue string

// BoolValue is a boolean cell
type BoolValue bool

// EmptyValue is a blank cell
type EmptyValue struct{}

// RichTextValue is a string cell made of styled runs. Only produced on output.
type RichTextValue struct {
	Runs []Run
}

func (TextValue) isValue()      {}
func (NumberValue) isValue()    {}
func (TimestampValue) isValue() {}
func (BoolValue) isValue()      {}
func (EmptyValue) isValue()     {}
func (RichTextValue) isValue()  {}

// Text returns the concatenated text of all runs
func (v RichTextValue) Text() string {
	var b strings.Builder
	for _, r := range v.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Style is the visual style of a run. The zero Style is the default style.
type Style struct {
	Bold   bool
	Italic bool
	Color  string // RGB hex without '#', e.g. "FF0000"
}

// IsDefault reports whether s carries no emphasis at all
func (s Style) IsDefault() bool {
	return s == Style{}
}

// Run is a contiguous span of text sharing one style
type Run struct {
	Text  string
	Style Style
}

// Grid is the cell grid of one sheet, row-major with zero-based indices.
// Rows may have different lengths.
type Grid struct {
	SheetName string
	Rows      [][]Value
}

// Cell returns the value at (row, col), or EmptyValue when out of range
func (g *Grid) Cell(row, col int) Value {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return EmptyValue{}
	}
	if v := g.Rows[row][col]; v != nil {
		return v
	}
	return EmptyValue{}
}
