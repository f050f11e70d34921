package sheetreplace

import (
	"fmt"
	"strings"
)

// TransformCell applies the replacement to one cell. It returns the output
// value and whether the cell matched. Only text cells are searched.
func (t *Transformer) TransformCell(v Value) (Value, bool) {
	switch val := v.(type) {
	case TextValue:
		return t.transformText(string(val))
	case RichTextValue:
		return t.transformText(val.Text())
	case NumberValue:
		return val, false
	case TimestampValue:
		return TextValue(val), false
	case BoolValue:
		// kept as a boolean cell instead of blanked
		return val, false
	case EmptyValue, nil:
		return TextValue(""), false
	default:
		panic(fmt.Sprintf("sheetreplace: unknown cell value %T", v))
	}
}

func (t *Transformer) transformText(s string) (Value, bool) {
	find := t.spec.Find
	if find == "" || !strings.Contains(s, find) {
		// Untouched text is trimmed, replaced text keeps its whitespace.
		return TextValue(strings.TrimSpace(s)), false
	}

	segments := Segment(s, find, t.spec.Replace)
	runs := make([]Run, 0, len(segments))
	for _, seg := range segments {
		run := Run{Text: seg.Text}
		if seg.Replaced {
			run.Style = t.config.Highlight
		}
		runs = append(runs, run)
	}
	return RichTextValue{Runs: runs}, true
}
